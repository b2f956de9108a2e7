package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Manage favorite products",
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite products",
	Args:  cobra.NoArgs,
	RunE:  runFavoriteList,
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a product to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteToggle(cmd, args[0], true)
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a product from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteToggle(cmd, args[0], false)
	},
}

var favoriteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	Args:  cobra.NoArgs,
	RunE:  runFavoriteClear,
}

func init() {
	favoriteListCmd.Flags().String("format", "table", "Output format: json, table")
	favoriteCmd.AddCommand(favoriteListCmd, favoriteAddCmd, favoriteRemoveCmd, favoriteClearCmd)
	rootCmd.AddCommand(favoriteCmd)
}

func runFavoriteList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return printProducts(cmd.OutOrStdout(), format, a.service.Favorites())
}

func runFavoriteToggle(cmd *cobra.Command, id string, isFavorite bool) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// A removal only needs the saved row, not a catalog fetch.
	if !isFavorite {
		if p, ok := a.store.Get(id); ok {
			a.store.Toggle(p, false)
			fmt.Fprintf(cmd.ErrOrStderr(), "Removed from favorites: %s\n", p.Name())
			return nil
		}
	}

	p, err := a.service.ToggleFavorite(cmd.Context(), id, isFavorite)
	if err != nil {
		return err
	}
	if isFavorite {
		fmt.Fprintf(cmd.ErrOrStderr(), "Added to favorites: %s\n", p.Name())
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Removed from favorites: %s\n", p.Name())
	}
	return nil
}

func runFavoriteClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.service.ClearFavorites()
	a.writer.Flush()
	if err := a.repo.DeleteAll(context.WithoutCancel(cmd.Context())); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Removed %d favorites\n", n)
	return nil
}
