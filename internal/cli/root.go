// Package cli wires configuration, logging and the request executor into
// the reqtabs commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/artpar/reqtabs/internal/app"
	"github.com/artpar/reqtabs/internal/config"
	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/logging"
	httpclient "github.com/artpar/reqtabs/internal/protocol/http"
	"github.com/artpar/reqtabs/internal/runner"
	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the log directory and file.
const AppName = "reqtabs"

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	v := config.New()

	// main prints errors once; a failing run is not a usage error.
	cmd := &cobra.Command{
		Use:           "reqtabs",
		Short:         "reqtabs - a tabbed TUI HTTP client",
		Long:          "reqtabs keeps several HTTP requests open in tabs, each with its own editor and response.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default ~/.config/reqtabs/config.yaml)")
	flags.Duration("timeout", httpclient.DefaultTimeout, "request timeout")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.Bool("debug", false, "write debug entries to the log file")
	flags.String("log-file", "", "log file (default is the platform state directory)")
	flags.String("env-file", "", "YAML file of environments")
	flags.StringP("env", "e", "", "environment to start with")
	cmd.Flags().Int("chrome", views.DefaultChrome, "rows reserved for the tab bar and footers")
	cmd.Flags().StringP("tabs", "t", "", "YAML file of requests to open as tabs")

	mustBindFlags(v, cmd.PersistentFlags())
	mustBindFlags(v, cmd.Flags())

	cmd.AddCommand(NewSendCommand(v))
	cmd.AddCommand(NewRunCommand(v))

	return cmd
}

// mustBindFlags binds flags to config keys. Binding only fails on a nil
// flag, which is a programming error.
func mustBindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	if err := config.BindFlags(v, flags); err != nil {
		panic(err)
	}
}

// runTUI starts the TUI application.
func runTUI(ctx context.Context, cfg config.Config) error {
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	model, err := buildModel(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting tui", "tabs", len(model.Store().Snapshot().Tabs))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}

// buildModel loads tabs and environments and assembles the root model.
func buildModel(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.Model, error) {
	envs, err := loadEnvironments(cfg.Env.File)
	if err != nil {
		return nil, err
	}
	records, err := loadRecords(cfg.Tabs.File)
	if err != nil {
		return nil, err
	}

	s := store.New(newRunner(cfg, logger),
		store.WithRecords(records...),
		store.WithLogger(logger),
		store.WithContext(ctx),
	)
	s.SetEnvironments(envs)
	if err := s.UseEnvironment(cfg.Env.Name); err != nil {
		return nil, err
	}

	return app.New(s,
		app.WithLogger(logger),
		app.WithViewOptions(views.WithChrome(cfg.Layout.Chrome)),
	), nil
}

func openLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.InitLogger(AppName, logging.Options{
		Path:  cfg.Log.Path,
		Debug: cfg.Log.Debug,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, closer, nil
}

func newRunner(cfg config.Config, logger *slog.Logger) *runner.Runner {
	client := httpclient.NewClient(
		httpclient.WithConfig(httpclient.Config{
			Timeout:         cfg.HTTP.Timeout,
			FollowRedirects: cfg.HTTP.FollowRedirects,
			Insecure:        cfg.HTTP.Insecure,
		}),
		httpclient.WithCookieJar(httpclient.NewCookieJar()),
	)
	return runner.New(
		runner.WithRequester(client),
		runner.WithTimeout(cfg.HTTP.Timeout),
		runner.WithLogger(logger),
	)
}

func loadEnvironments(path string) ([]*core.Environment, error) {
	if path == "" {
		return nil, nil
	}
	envs, err := core.LoadEnvironmentsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load environments: %w", err)
	}
	return envs, nil
}

func loadRecords(path string) ([]*core.Record, error) {
	if path == "" {
		return nil, nil
	}
	records, err := core.LoadRecordsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tabs: %w", err)
	}
	return records, nil
}

// pickEnvironment returns the named environment, or nil for an empty name.
func pickEnvironment(envs []*core.Environment, name string) (*core.Environment, error) {
	if name == "" {
		return nil, nil
	}
	for _, env := range envs {
		if env.Name() == name {
			return env, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownEnvironment, name)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// loadConfig is shared by the subcommands.
func loadConfig(v *viper.Viper) (config.Config, error) {
	if v == nil {
		v = config.New()
	}
	return config.Load(v)
}
