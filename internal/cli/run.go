package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/reqtabs/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNoTabsFile is returned when run has neither an argument nor tabs.file.
var ErrNoTabsFile = errors.New("no tabs file given")

// RunOptions holds options for the run command.
type RunOptions struct {
	JSON bool
	Bail bool
}

// RunResult is the outcome of one record.
type RunResult struct {
	Name       string        `json:"name"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	Status     int           `json:"status,omitempty"`
	StatusText string        `json:"status_text,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// Passed reports whether the record got a non-error response.
func (r RunResult) Passed() bool {
	return r.Error == "" && r.Status > 0 && r.Status < 400
}

// RunSummary aggregates a run.
type RunSummary struct {
	File          string        `json:"file"`
	Total         int           `json:"total_requests"`
	Executed      int           `json:"executed"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	TotalDuration time.Duration `json:"-"`
	TotalMs       int64         `json:"total_duration_ms"`
	Results       []RunResult   `json:"results"`
}

// NewRunCommand creates the run command.
func NewRunCommand(v *viper.Viper) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:           "run [TABS_FILE]",
		Short:         "Send every request in a tabs file",
		Long:          "Send the requests of a tabs file in order and print a summary. Without an argument tabs.file is used.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runTabsFile(cmd, v, path, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.Bail, "bail", false, "Stop at the first failed request")

	return cmd
}

func runTabsFile(cmd *cobra.Command, v *viper.Viper, path string, opts *RunOptions) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.Tabs.File
	}
	if path == "" {
		return ErrNoTabsFile
	}

	records, err := loadRecords(path)
	if err != nil {
		return err
	}
	envs, err := loadEnvironments(cfg.Env.File)
	if err != nil {
		return err
	}
	env, err := pickEnvironment(envs, cfg.Env.Name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !opts.JSON {
		fmt.Fprintf(out, "Running: %s (%d requests)\n", path, len(records))
		if env != nil {
			fmt.Fprintf(out, "Using environment: %s\n", env.Name())
		}
	}

	r := newRunner(cfg, logging.NewNopLogger())
	summary := &RunSummary{File: path, Total: len(records)}
	start := time.Now()

	for _, rec := range records {
		result := RunResult{Name: rec.Name(), Method: rec.Method(), URL: rec.FullURL()}
		began := time.Now()
		resp, err := r.Execute(cmd.Context(), rec, env)
		result.Duration = time.Since(began)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Status = resp.Status().Code()
			result.StatusText = statusLine(resp)
			result.Duration = resp.Timing().Total
		}
		result.DurationMs = result.Duration.Milliseconds()

		summary.Executed++
		if result.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)

		if !opts.JSON {
			printResult(cmd, result)
		}
		if opts.Bail && !result.Passed() {
			break
		}
	}

	summary.TotalDuration = time.Since(start)
	summary.TotalMs = summary.TotalDuration.Milliseconds()

	if opts.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Summary:\n")
		fmt.Fprintf(out, "  Requests: %d/%d passed\n", summary.Passed, summary.Total)
		fmt.Fprintf(out, "  Total time: %s\n", formatDuration(summary.TotalDuration))
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Executed)
	}
	return nil
}

func printResult(cmd *cobra.Command, r RunResult) {
	out := cmd.OutOrStdout()
	mark := "✓"
	if !r.Passed() {
		mark = "✗"
	}
	if r.Error != "" {
		fmt.Fprintf(out, "%s %s %s: %s\n", mark, r.Method, r.Name, r.Error)
		return
	}
	fmt.Fprintf(out, "%s %s %s %s (%s)\n", mark, r.Method, r.Name, r.StatusText, formatDuration(r.Duration))
}
