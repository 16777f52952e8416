package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/greencart/internal/app"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/logger"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// RootOptions holds global flags and the state PersistentPreRunE prepares.
type RootOptions struct {
	Verbose bool
	Format  string
	BaseURL string
	Offline bool

	cfg  *config.Config
	logg *logger.Logger
}

// NewRootCommand builds the greencart command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "greencart",
		Short:         "GreenCart cart synchronization engine",
		Long:          "Keeps a local cart in sync with the GreenCart service and serves it to the UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != formatText && opts.Format != formatJSON {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be text or json", opts.Format))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			level := logger.ParseLevel(cfg.App.LogLevel)
			if opts.Verbose {
				level = zerolog.DebugLevel
			}
			opts.cfg = cfg
			opts.logg = logger.New(logger.Options{
				ServiceName: "greencart",
				Level:       level,
				WarnStack:   cfg.App.LogWarnStack,
				Output:      cmd.ErrOrStderr(),
				Format:      cfg.App.LogFormat,
			})
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "cart service base URL (overrides GREENCART_SYNC_BASE_URL)")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "start with the connectivity signal off")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewSetQuantityCommand(opts))
	cmd.AddCommand(NewToggleGreenCommand(opts))
	cmd.AddCommand(NewToggleOffsetCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))

	return cmd
}

func (o *RootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, out: cmd.OutOrStdout()}
}

// build wires the engine against the configured store. baseURL, when set,
// wins over both the flag and the environment.
func (o *RootOptions) build(ctx context.Context, baseURL string) (*app.App, error) {
	if baseURL == "" {
		baseURL = o.BaseURL
	}
	a, err := app.Build(ctx, o.cfg, o.logg, app.Options{BaseURL: baseURL})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "starting cart engine", err)
	}
	if o.Offline {
		a.Connectivity.Set(false)
	}
	return a, nil
}
