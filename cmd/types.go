package cmd

import (
	"fmt"

	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Show skincare product types and how many products each has",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func init() {
	typesCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Counting product types...")
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	counts, err := a.service.ProductTypes(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("types failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return printJSON(out, counts)
	}
	if len(counts) == 0 {
		fmt.Fprintln(out, "No product types found.")
		return nil
	}
	fmt.Fprintln(out, "Skincare product types:")
	fmt.Fprintln(out)
	for i, c := range counts {
		fmt.Fprintf(out, " %2d. %-30s  (%d products)\n", i+1, formatType(c.Type), c.Count)
	}
	return nil
}
