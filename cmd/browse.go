package cmd

import (
	"fmt"
	"sort"

	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Load the skincare catalog, falling back to popular brands",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Loading skincare catalog...")
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	res, err := a.service.LoadInitial(ctx)
	spin.Stop()

	stderr := cmd.ErrOrStderr()
	if res != nil && res.PrimaryErr != nil {
		fmt.Fprintf(stderr, "Catalog unavailable: %v\n", res.PrimaryErr)
	}
	if res != nil && res.Fallback {
		fmt.Fprintln(stderr, "Trying specific brands...")
		brands := make([]string, 0, len(res.BrandErrors))
		for brand := range res.BrandErrors {
			brands = append(brands, brand)
		}
		sort.Strings(brands)
		for _, brand := range brands {
			fmt.Fprintf(stderr, "Error loading brand %s: %v\n", brand, res.BrandErrors[brand])
		}
	}
	if err != nil {
		return err
	}

	return printProducts(cmd.OutOrStdout(), format, res.Products)
}
