package cmd

import (
	"fmt"
	"strings"

	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var beautyFactsCmd = &cobra.Command{
	Use:   "beautyfacts <terms...>",
	Short: "Search the Open Beauty Facts database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBeautyFacts,
}

func init() {
	beautyFactsCmd.Flags().Int("page", 1, "Page number")
	beautyFactsCmd.Flags().Bool("all", false, "Include products outside skincare")
	beautyFactsCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(beautyFactsCmd)
}

func runBeautyFacts(cmd *cobra.Command, args []string) error {
	terms := strings.Join(args, " ")
	page, _ := cmd.Flags().GetInt("page")
	all, _ := cmd.Flags().GetBool("all")
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Searching Open Beauty Facts for '%s'...", terms))
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	result, err := a.service.SearchTerms(ctx, terms, page, !all)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("beautyfacts search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "table" {
		fmt.Fprintf(out, "Page %d of %d (%d matches)\n\n", result.Page, result.PageCount, result.Count)
		printProductsTable(out, result.Products)
		return nil
	}
	return printJSON(out, result)
}
