package cmd

import (
	"fmt"

	"github.com/lukman83/skinscout/internal/filter"
	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search skincare products by text, type, price and concern",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("category", "", "Product type filter, e.g. serum")
	searchCmd.Flags().Float64("min-price", 0, "Minimum price (inclusive)")
	searchCmd.Flags().Float64("max-price", 0, "Maximum price (inclusive)")
	searchCmd.Flags().StringSlice("concern", nil, "Required skin concern (repeatable)")
	searchCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	criteria, err := criteriaFromFlags(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Searching skincare catalog...")
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	products, err := a.service.Search(ctx, criteria)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printProducts(cmd.OutOrStdout(), format, products)
}

func criteriaFromFlags(cmd *cobra.Command, args []string) (filter.Criteria, error) {
	var c filter.Criteria
	if len(args) > 0 {
		c.Query = args[0]
	}
	c.Category, _ = cmd.Flags().GetString("category")
	c.Concerns, _ = cmd.Flags().GetStringSlice("concern")

	if cmd.Flags().Changed("min-price") {
		v, _ := cmd.Flags().GetFloat64("min-price")
		c.MinPrice = &v
	}
	if cmd.Flags().Changed("max-price") {
		v, _ := cmd.Flags().GetFloat64("max-price")
		c.MaxPrice = &v
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return c, fmt.Errorf("min-price %.2f is greater than max-price %.2f", *c.MinPrice, *c.MaxPrice)
	}
	return c, nil
}
