package main

import (
	"strings"

	"github.com/spf13/cobra"

	"docsrag/internal/query"
)

var queryLimit int

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 5, "Maximum number of results")
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a similarity query against the collection",
	Long: `Run a near-text query and print the results ordered by descending score.

Examples:
  docsrag query "How do I add memory to an agent?"
  docsrag query --limit 3 persistence checkpointers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

	client, store, err := openQueryClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, store)

	results, err := client.Search(ctx, text, queryLimit)
	if err != nil {
		return err
	}
	query.Print(cmd.OutOrStdout(), text, results)
	return nil
}
