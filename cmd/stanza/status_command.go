package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stanza/internal/api"
	"stanza/internal/daemonctl"
)

const stopGracePeriod = 10 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server, catalog, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.BuildStatusSnapshot(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			for _, line := range statusLines(status, stdoutIsTerminal(cmd)) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func statusLines(status *api.StatusResponse, colorize bool) []string {
	lines := []string{"System"}
	if status.Running {
		msg := "Running (pid " + strconv.Itoa(status.PID) + ")"
		if status.StartedAt != "" {
			msg += " since " + status.StartedAt
		}
		lines = append(lines, renderStatusLine("Server", statusOK, msg, colorize))
	} else {
		lines = append(lines, renderStatusLine("Server", statusInfo, "Not running", colorize))
	}
	if status.CatalogHealth != "" {
		lines = append(lines, renderStatusLine("Catalog", statusInfo, status.CatalogHealth, colorize))
	}

	lines = append(lines, "", "Dependencies")
	for _, dep := range status.Dependencies {
		kind, msg := statusOK, dep.Command
		if !dep.Available {
			kind, msg = statusError, dep.Detail
			if dep.Optional {
				kind = statusWarn
			}
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, msg, colorize))
	}

	c := status.Catalog
	lines = append(lines, "", "Catalog",
		renderStatusLine("Fragments", statusInfo, strconv.Itoa(c.Fragments), colorize),
		renderStatusLine("Lines", statusInfo, strconv.Itoa(c.Lines), colorize),
		renderStatusLine("Tracks", statusInfo, fmt.Sprintf("%d (%d draft, %d active)", c.Tracks, c.DraftTracks, c.ActiveTracks), colorize),
		renderStatusLine("Timings", statusInfo, strconv.Itoa(c.Timings), colorize),
	)
	return lines
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := daemonctl.Stop(cmd.Context(), cfg, stopGracePeriod)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Server is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(cmd.OutOrStdout(), "Server (pid %d) did not exit in time and was killed\n", result.PID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server (pid %d) stopped\n", result.PID)
			return nil
		},
	}
}
