package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leaderkill/pkg/killer"
	"leaderkill/pkg/logger"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <store>",
		Short: "Show the leader of a job store without stopping it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.status(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) status(ctx context.Context, out io.Writer, locator string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.DispatchTimeout)
	defer cancel()

	log := logger.WithInvocation(locator)
	opts := append([]killer.Option{killer.WithLogger(log)}, a.dispatcherOpts...)
	d := killer.New(a.storeOpener(), opts...)

	st, err := d.Inspect(ctx, locator)
	if err != nil {
		log.Error("Failed to read leader status", zap.Error(err))
		return err
	}
	writeStatus(out, st)
	return nil
}

func writeStatus(out io.Writer, st killer.Status) {
	fmt.Fprintf(out, "leader pid:   %d\n", st.Leader.PID)
	fmt.Fprintf(out, "leader node:  %s\n", st.Leader.NodeID)

	switch {
	case st.LocalNodeID == "":
		fmt.Fprintln(out, "this node:    unknown")
	case st.SameNode:
		fmt.Fprintf(out, "this node:    %s (same node)\n", st.LocalNodeID)
	default:
		fmt.Fprintf(out, "this node:    %s (remote leader)\n", st.LocalNodeID)
	}

	if st.SameNode {
		switch {
		case st.Alive && st.Process != "":
			fmt.Fprintf(out, "process:      alive (%s)\n", st.Process)
		case st.Alive:
			fmt.Fprintln(out, "process:      alive")
		default:
			fmt.Fprintln(out, "process:      not signalable")
		}
	}

	if st.StopRequested {
		fmt.Fprintln(out, "stop flag:    set")
	} else {
		fmt.Fprintln(out, "stop flag:    not set")
	}
}
