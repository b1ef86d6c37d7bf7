package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd(env *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Create or delete the search index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the search index with the node and user mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.lifecycle.CreateIndex(cmd.Context()); err != nil {
				return fmt.Errorf("create index: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "index %q ready\n", a.cfg.Backend.IndexName)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the search index and every document in it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.lifecycle.DeleteAll(cmd.Context()); err != nil {
				return fmt.Errorf("delete index: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "index %q deleted\n", a.cfg.Backend.IndexName)
			return err
		},
	})

	return cmd
}
