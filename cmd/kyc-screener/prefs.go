package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joelkehle/kyc-screener/internal/store"
)

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		if historyClear {
			if err := a.store.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
			return nil
		}
		searches, err := a.store.RecentSearches()
		if err != nil {
			return err
		}
		if len(searches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent searches.")
			return nil
		}
		for _, q := range searches {
			fmt.Fprintln(cmd.OutOrStdout(), q)
		}
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the terminal report theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(store.ThemeLight), string(store.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 0 {
			theme, err := a.store.Theme()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		}
		theme, err := store.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := a.store.SetTheme(theme); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", theme)
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "clear the search history")
}
