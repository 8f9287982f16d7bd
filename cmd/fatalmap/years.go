package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newYearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the years in the dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.loadDataset(context.Background()); err != nil {
				return err
			}
			seq, err := a.svc.Sequence()
			if err != nil {
				return err
			}
			for _, y := range seq.Years() {
				fmt.Fprintln(cmd.OutOrStdout(), y)
			}
			return nil
		},
	}
}
