package cmd

import (
	"fmt"

	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var brandCmd = &cobra.Command{
	Use:   "brand <brand>",
	Short: "List skincare products of one brand",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrand,
}

func init() {
	brandCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(brandCmd)
}

func runBrand(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Fetching %s products...", args[0]))
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	products, err := a.service.ByBrand(ctx, args[0])
	spin.Stop()
	if err != nil {
		return fmt.Errorf("brand search failed: %w", err)
	}

	return printProducts(cmd.OutOrStdout(), format, products)
}
