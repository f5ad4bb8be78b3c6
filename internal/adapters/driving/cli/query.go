package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

var (
	flagLimit         int
	flagMinSimilarity float64
	flagJSON          bool
	flagInclude       []string
	flagExclude       []string
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Find the notes most similar to a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	queryCmd.Flags().Float64Var(&flagMinSimilarity, "min-similarity", 0, "minimum similarity score (default from settings)")
	queryCmd.Flags().BoolVar(&flagJSON, "json", false, "output results as JSON")
	queryCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "restrict results to matching paths (gitignore syntax)")
	queryCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "drop results from matching paths (gitignore syntax)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := domain.QueryOptions{
		Limit:           flagLimit,
		MinSimilarity:   flagMinSimilarity,
		IncludePatterns: flagInclude,
		ExcludePatterns: flagExclude,
	}

	results, err := app.engine.Query(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if flagJSON {
		return outputJSON(cmd, results)
	}
	outputResults(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResults(cmd *cobra.Command, results []domain.QueryResult) {
	if len(results) == 0 {
		cmd.Println("No matching notes.")
		return
	}

	for i, r := range results {
		header := fmt.Sprintf("[%d] %s %s",
			i+1,
			stylePath.Render(r.DocumentPath),
			styleScore.Render(fmt.Sprintf("(%.3f)", r.Similarity)),
		)
		cmd.Println(header)
		cmd.Println(styleMuted.Render(snippet(r.Chunk.Text, 200)))
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates for single-line display.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + "…"
}
