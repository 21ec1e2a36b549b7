package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leaderkill/pkg/killer"
	"leaderkill/pkg/logger"
	tracing "leaderkill/pkg/observability"
)

type killFlags struct {
	store string
	force bool
}

func (f *killFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.store, "store", "", "Store locator (alternative to the positional argument)")
	cmd.Flags().BoolVar(&f.force, "force", false, "Send SIGKILL instead of SIGTERM when the leader runs on this node")
}

func (f *killFlags) run(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		locator, err := pickLocator(f.store, args)
		if err != nil {
			return err
		}
		return a.kill(cmd.Context(), locator, f.force)
	}
}

// newKillCmd is the explicit form of the root command.
func newKillCmd(a *app) *cobra.Command {
	var kf killFlags
	cmd := &cobra.Command{
		Use:   "kill <store>",
		Short: "Stop the leader of a job store",
		Args:  cobra.MaximumNArgs(1),
		RunE:  kf.run(a),
	}
	kf.bind(cmd)
	return cmd
}

func pickLocator(flag string, args []string) (string, error) {
	switch {
	case flag != "" && len(args) > 0:
		return "", errors.New("give the store either as an argument or with --store, not both")
	case flag != "":
		return flag, nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("a store locator is required")
	}
}

func (a *app) kill(ctx context.Context, locator string, force bool) error {
	log := logger.WithInvocation(locator)

	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Enabled = a.cfg.TracingEnabled
	tcfg.Endpoint = a.cfg.OTLPEndpoint
	tp, err := tracing.Init(ctx, tcfg)
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		tp, _ = tracing.Init(ctx, tracing.DefaultConfig(serviceName))
	}
	defer a.flush(tp, log)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.DispatchTimeout)
	defer cancel()

	opts := append([]killer.Option{
		killer.WithLogger(log),
		killer.WithTracer(tp.Tracer()),
	}, a.dispatcherOpts...)
	d := killer.New(a.storeOpener(), opts...)

	_, err = d.Dispatch(ctx, locator, killer.Options{Force: force})
	return err
}
