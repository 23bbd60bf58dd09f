package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List supported (model, option, method) combinations",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			for _, k := range a.registry.Keys() {
				if _, err := fmt.Fprintln(c.OutOrStdout(), k); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
