package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dombatch "github.com/kailas-cloud/nodesearch/internal/domain/batch"
	batchuc "github.com/kailas-cloud/nodesearch/internal/usecase/batch"
)

func newReindexCmd(env *string) *cobra.Command {
	var (
		all   bool
		nodes []string
		users []string
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Resync nodes and users from the entity store into the index",
		Example: `  nodesearch reindex --all
  nodesearch reindex --node p1 --node c7 --user u3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && len(nodes)+len(users) == 0 {
				return errors.New("pass --all or at least one --node or --user")
			}

			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()

			var report batchuc.Report
			if all {
				report, err = a.batch.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("reindex: %w", err)
				}
			} else {
				report.Nodes = a.batch.Nodes(cmd.Context(), nodes)
				report.Users = a.batch.Users(cmd.Context(), users)
			}

			printResults(cmd.OutOrStdout(), "node", report.Nodes)
			printResults(cmd.OutOrStdout(), "user", report.Users)
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d entities failed to reindex", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reindex every node and user")
	cmd.Flags().StringArrayVar(&nodes, "node", nil, "Node id to reindex (repeatable)")
	cmd.Flags().StringArrayVar(&users, "user", nil, "User id to reindex (repeatable)")
	return cmd
}

func printResults(w io.Writer, kind string, results []dombatch.Result) {
	for _, r := range results {
		if r.Err() != nil {
			_, _ = fmt.Fprintf(w, "%s %s: %s (%v)\n", kind, r.ID(), r.Status(), r.Err())
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", kind, r.ID(), r.Status())
	}
}
