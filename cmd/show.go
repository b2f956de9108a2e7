package cmd

import (
	"fmt"

	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the full details of one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "table" {
		return fmt.Errorf("unknown format %q (want json or table)", format)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Looking up product...")
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	p, err := a.service.Resolve(ctx, args[0])
	spin.Stop()
	if err != nil {
		return fmt.Errorf("show failed: %w", err)
	}

	if format == "json" {
		return printJSON(cmd.OutOrStdout(), p)
	}
	printProductDetail(cmd.OutOrStdout(), p)
	return nil
}
