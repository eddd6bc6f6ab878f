package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SendOptions holds options for the send command.
type SendOptions struct {
	Headers []string
	Body    string
	JSON    bool
}

// NewSendCommand creates the send command. A nil v loads configuration
// from defaults, file and environment only.
func NewSendCommand(v *viper.Viper) *cobra.Command {
	opts := &SendOptions{}

	cmd := &cobra.Command{
		Use:           "send METHOD URL",
		Short:         "Send an HTTP request",
		Long:          "Send a single HTTP request through the same executor the tabs use and print the response.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			url := args[1]
			return runSend(cmd, v, method, url, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Request headers (format: Key:Value)")
	cmd.Flags().StringVarP(&opts.Body, "body", "d", "", "Request body")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output response as JSON")

	return cmd
}

func runSend(cmd *cobra.Command, v *viper.Viper, method, url string, opts *SendOptions) error {
	cfg, err := loadConfig(v)
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

	rec := core.NewRecord("send", method, url)
	headers := parseHeaders(opts.Headers)
	for key, value := range headers {
		rec.SetHeader(key, value)
	}
	if opts.Body != "" {
		rec.SetBody(opts.Body)
		if strings.Contains(headers["Content-Type"], "json") {
			rec.SetBodyType(core.BodyTypeJSON)
		}
	}

	resp, err := newRunner(cfg, logging.NewNopLogger()).Execute(cmd.Context(), rec, env)
	if err != nil {
		return err
	}

	if opts.JSON {
		return outputJSON(cmd, resp)
	}
	return outputHuman(cmd, resp)
}

func outputJSON(cmd *cobra.Command, resp *core.Response) error {
	headers := make(map[string][]string, resp.Headers().Len())
	for _, key := range resp.Headers().Keys() {
		headers[key] = resp.Headers().GetAll(key)
	}

	result := map[string]any{
		"status":      resp.Status().Code(),
		"status_text": resp.Status().Text(),
		"headers":     headers,
		"body":        resp.Body().String(),
		"timing_ms":   resp.Timing().Total.Milliseconds(),
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputHuman(cmd *cobra.Command, resp *core.Response) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "HTTP %s\n", statusLine(resp))
	fmt.Fprintf(out, "Time: %s\n", formatDuration(resp.Timing().Total))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Headers:")
	for _, key := range resp.Headers().Keys() {
		for _, value := range resp.Headers().GetAll(key) {
			fmt.Fprintf(out, "  %s: %s\n", key, value)
		}
	}
	fmt.Fprintln(out)

	if !resp.Body().IsEmpty() {
		fmt.Fprintln(out, "Body:")
		fmt.Fprintln(out, resp.Body().String())
	}

	return nil
}

// statusLine renders "200 OK" whether or not the reason already carries
// the code.
func statusLine(resp *core.Response) string {
	code := strconv.Itoa(resp.Status().Code())
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status().Text(), code))
	if text == "" {
		return code
	}
	return code + " " + text
}

// parseHeaders converts header strings to a map.
func parseHeaders(headerStrs []string) map[string]string {
	headers := make(map[string]string)
	for _, h := range headerStrs {
		idx := strings.Index(h, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(h[:idx])
		value := strings.TrimSpace(h[idx+1:])
		headers[key] = value
	}
	return headers
}
