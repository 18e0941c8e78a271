package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/stepforge/internal/codegen"
	"github.com/v0xg/stepforge/internal/history"
)

func newGenerateCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate <actions.json>",
		Short: "Turn a saved action log into a standalone script",
		Long: `generate reads an action log written by 'save' and prints an equivalent
go-rod program or Selenium script. Only navigate, click, send_keys and
clear are reproduced; other steps become comments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := history.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading action log: %w", err)
			}
			opts, err := a.codegenOptions("")
			if err != nil {
				return err
			}
			script, err := codegen.Generate(actions, opts)
			if err != nil {
				return err
			}
			for _, s := range script.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ step %d (%s) not in script: %s\n", s.Index, s.Kind, s.Reason)
			}
			a.logger.Debug("Script generated.",
				zap.String("target", string(script.Target)),
				zap.Int("steps", script.Steps),
				zap.Int("skipped", len(script.Skipped)),
			)

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), script.Source)
				return nil
			}
			if err := os.WriteFile(output, []byte(script.Source), 0o644); err != nil {
				return fmt.Errorf("writing script: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s script to %s (%d steps)\n", script.Target, output, script.Steps)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringP("target", "t", "", "Script language: go or python (default from config, go)")
	cmd.Flags().Bool("headless", false, "Generate a script that runs the browser headless")
	cmd.Flags().Duration("timeout", 0, "Element wait written into the script")
	return cmd
}
