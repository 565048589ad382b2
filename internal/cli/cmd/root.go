package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"iecsize/internal/config"
	"iecsize/internal/logger"
	"iecsize/pkg/iec"
)

const (
	ExitOK           = 0
	ExitCLIError     = 1
	ExitInvalidInput = 2
	ExitScanError    = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type ctxKey string

const settingsKey ctxKey = "settings"

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "iecsize [integers...]",
		Short: "Render byte counts with IEC binary prefixes",
		Long: "iecsize scales byte counts into binary-prefixed units (B, KiB, MiB, GiB, TiB, PiB, EiB) " +
			"and prints them with two decimals, e.g. 5000 -> 4.88KiB. Use 'iecsize du' to size files and directories.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, v)
		},
		RunE: runConvert,
	}
	root.SetFlagErrorFunc(flagError)

	// Persistent flags available to all subcommands
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().Int("jobs", 2, "Max concurrent scans")

	root.Flags().Bool("raw", false, "Print the full-precision magnitude and the unit, tab separated")

	// Subcommands
	root.AddCommand(newDuCmd())
	root.AddCommand(newUnitsCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

// setup resolves settings (flag > env > config file > default), starts the
// logger and stores the settings on the command context.
func setup(cmd *cobra.Command, v *viper.Viper) error {
	if err := config.Init(v); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	s, err := config.Load(v)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if err := logger.Initialize(s.LogLevel); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to initialize logger: %w", err)}
	}
	logger.Log.Debug("Settings loaded",
		zap.String("command", cmd.Name()),
		zap.Int("jobs", s.Jobs),
		zap.String("log_level", s.LogLevel),
		zap.Bool("no_ui", s.NoUI),
		zap.String("config_file", v.ConfigFileUsed()),
	)
	cmd.SetContext(context.WithValue(cmd.Context(), settingsKey, s))
	return nil
}

func settingsFrom(ctx context.Context) config.Settings {
	if s, ok := ctx.Value(settingsKey).(config.Settings); ok {
		return s
	}
	return config.Settings{LogLevel: "warn", Jobs: 2}
}

func runConvert(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	out := cmd.OutOrStdout()
	for _, a := range args {
		v, err := parseMagnitude(a)
		if err != nil {
			return &ExitError{Code: ExitInvalidInput, Err: err}
		}
		if raw {
			fmt.Fprintf(out, "%s\t%s\n", strconv.FormatFloat(v.Raw(), 'g', -1, 64), v.Unit())
			continue
		}
		fmt.Fprintln(out, v)
	}
	return nil
}

// flagError reports a negative number that pflag took for a shorthand flag
// (iecsize -5) as an invalid magnitude. Other flag errors pass through.
func flagError(cmd *cobra.Command, err error) error {
	if cmd.HasParent() {
		return err
	}
	if arg, ok := negativeArg(err); ok {
		return &ExitError{Code: ExitInvalidInput, Err: fmt.Errorf("invalid magnitude %q: %w", arg, iec.ErrNegative)}
	}
	return err
}

// negativeArg extracts "-<digits>" from pflag's "unknown shorthand flag: '5' in -5".
func negativeArg(err error) (string, bool) {
	const marker = " in -"
	msg := err.Error()
	i := strings.LastIndex(msg, marker)
	if !strings.HasPrefix(msg, "unknown shorthand flag") || i < 0 {
		return "", false
	}
	digits := msg[i+len(marker):]
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return "", false
	}
	return "-" + digits, true
}

// parseMagnitude accepts a plain base-10 integer. Values too large for int64
// are still accepted up to the uint64 maximum.
func parseMagnitude(s string) (iec.Value, error) {
	s = strings.TrimSpace(s)
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return iec.New(u), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return iec.Value{}, fmt.Errorf("invalid magnitude %q: not a base-10 integer", s)
	}
	v, err := iec.From(n)
	if err != nil {
		return iec.Value{}, fmt.Errorf("invalid magnitude %q: %w", s, err)
	}
	return v, nil
}
