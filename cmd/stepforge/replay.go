package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/v0xg/stepforge/internal/history"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		keepGoing bool
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "replay <actions.json>",
		Short: "Execute a saved action log against a fresh browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			actions, err := history.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading action log: %w", err)
			}

			s := a.newSession()
			s.SetRecording(true)
			fmt.Fprint(out, "→ Starting browser... ")
			if err := s.Start(cmd.Context()); err != nil {
				fmt.Fprintln(out, "failed")
				return err
			}
			defer s.Stop()
			fmt.Fprintln(out, "done")

			fmt.Fprintf(out, "→ Replaying %d actions from %s\n", len(actions), args[0])
			report, replayErr := s.Replay(cmd.Context(), actions, keepGoing)
			printReplay(out, report)

			if save && len(s.History()) > 0 {
				path, err := history.WriteFile(a.cfg.Output.Dir, s.History(), a.now())
				if err != nil {
					return fmt.Errorf("saving action log: %w", err)
				}
				fmt.Fprintf(out, "✓ Saved %d actions to %s\n", len(s.History()), path)
			}
			if replayErr != nil {
				return fmt.Errorf("replay failed: %w", replayErr)
			}
			fmt.Fprintf(out, "✓ Replayed %d actions\n", len(report))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&keepGoing, "keep-going", false, "Continue after a failed step")
	f.BoolVar(&save, "save", false, "Save the actions that succeeded as a new log")
	f.Bool("headless", false, "Run the browser without a window")
	f.String("proxy", "", "Proxy server, host:port")
	f.String("user-agent", "", "Custom user agent")
	f.Bool("stealth", false, "Open the page with stealth evasions")
	f.String("profile", "", "Chrome/Chromium profile directory")
	f.Duration("timeout", 0, "Element wait bound")
	f.String("dir", "", "Directory for the saved log")
	return cmd
}
