package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Reconcile index documents with the stored documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reports, err := a.Workflows.Repair(cmd.Context())
			out := cmd.OutOrStdout()
			for _, r := range reports {
				if !r.Changed() {
					continue
				}
				fmt.Fprintf(out, "%s: dropped %d, added %d\n", r.Collection, len(r.Dropped), len(r.Added))
			}
			return err
		},
	}
}
