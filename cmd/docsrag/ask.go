package main

import (
	"strings"

	"github.com/spf13/cobra"

	"docsrag/internal/query"
)

var (
	askLimit int
	askTask  string
)

func init() {
	askCmd.Flags().IntVar(&askLimit, "limit", 5, "Number of chunks handed to the model")
	askCmd.Flags().StringVar(&askTask, "prompt", "", "Instruction applied to all retrieved chunks at once (defaults to answering the question)")
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the retrieved chunks with a generative model",
	Long: `Retrieve the chunks nearest to the question and run a grouped generative task
over them. Weaviate runs the task server-side; other backends call the
completion model directly.

Examples:
  docsrag ask "How do I create a multi-agent system?"
  docsrag ask --prompt "List the APIs mentioned." streaming`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	client, store, err := openQueryClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, store)

	gen, err := client.Ask(ctx, question, askTask, askLimit)
	if err != nil {
		return err
	}
	query.PrintAnswer(cmd.OutOrStdout(), question, gen)
	return nil
}
