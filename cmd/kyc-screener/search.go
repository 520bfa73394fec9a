package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joelkehle/kyc-screener/internal/llm"
	"github.com/joelkehle/kyc-screener/internal/screening"
)

var (
	searchLat float64
	searchLng float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find companies matching a free-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := locationFlags(cmd)
		a, err := newApp(cmd.Context(), true, loc)
		if err != nil {
			return err
		}
		defer a.close()

		companies, err := a.searcher.Search(cmd.Context(), strings.Join(args, " "), loc)
		if err != nil {
			return err
		}
		printCompanies(cmd.OutOrStdout(), companies)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, reportCmd} {
		c.Flags().Float64Var(&searchLat, "lat", 0, "latitude hint for maps grounding")
		c.Flags().Float64Var(&searchLng, "lng", 0, "longitude hint for maps grounding")
	}
}

// locationFlags returns a location only when both --lat and --lng were given.
func locationFlags(cmd *cobra.Command) *llm.LatLng {
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil
	}
	return &llm.LatLng{Latitude: searchLat, Longitude: searchLng}
}

func printCompanies(w io.Writer, companies []screening.Company) {
	if len(companies) == 0 {
		fmt.Fprintln(w, "No companies found. Try a different search term or check for typos.")
		return
	}
	for i, c := range companies {
		fmt.Fprintf(w, "%d. %s\n", i+1, c.Name)
		if c.RegistrationNumber != "" {
			fmt.Fprintf(w, "   Registration: %s\n", c.RegistrationNumber)
		}
		if c.Address != "" {
			fmt.Fprintf(w, "   Address:      %s\n", c.Address)
		}
		if c.Website != "" {
			fmt.Fprintf(w, "   Website:      %s\n", c.Website)
		}
		if c.Description != "" {
			fmt.Fprintf(w, "   %s\n", c.Description)
		}
	}
}
