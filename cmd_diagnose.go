package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ilnlp/convert"
)

func newDiagnoseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose [task-file]",
		Short: "Report the background rules that leave an example without answer sets",
		Long: `diagnose finds, for every example whose input has no answer set together
with the background rules, the minimal unsatisfiable subsets of rules and
groups them into independent conflicts. The report is printed as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTask(cmd, args)
			if err != nil {
				return err
			}
			pipeline, err := convert.New(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			ctx, cancel := opts.runContext(cmd.Context())
			defer cancel()

			diagnoses, err := pipeline.Diagnose(ctx, text)
			if err != nil {
				return err
			}
			if diagnoses == nil {
				diagnoses = []convert.Diagnosis{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(diagnoses)
		},
	}
}
