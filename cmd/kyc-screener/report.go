package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/joelkehle/kyc-screener/internal/export"
	"github.com/joelkehle/kyc-screener/internal/screening"
	"github.com/joelkehle/kyc-screener/internal/store"
)

const (
	formatTerminal = "terminal"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatPDF      = "pdf"
)

var (
	reportPick   int
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "Search for a company and generate its due-diligence report",
	Long: `Runs the whole flow: search, pick a candidate, research every section
concurrently, then render the report. Progress is printed to stderr as
sections settle.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(reportFormat)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		loc := locationFlags(cmd)
		a, err := newApp(ctx, true, loc)
		if err != nil {
			return err
		}
		defer a.close()

		companies, err := a.searcher.Search(ctx, strings.Join(args, " "), loc)
		if err != nil {
			return err
		}
		company, err := pickCompany(companies, reportPick)
		if err != nil {
			printCompanies(cmd.ErrOrStderr(), companies)
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Generating report for %s\n", company.Identifier())

		report, err := a.orchestrator.Generate(ctx, company, progressPrinter(cmd.ErrOrStderr(), a.orchestrator.Sections()))
		if err != nil {
			return err
		}
		return writeReport(cmd, a.store, report)
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportPick, "pick", 0, "1-based index of the search result to report on (default: the only result)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", formatTerminal, "output format: terminal, markdown, json or pdf")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write output to this file (pdf defaults to KYC-Report-<company>.pdf)")
}

func validateFormat(f string) error {
	switch f {
	case formatTerminal, formatMarkdown, formatJSON, formatPDF:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal, markdown, json or pdf)", f)
	}
}

// pickCompany selects the 1-based pick from companies. With pick unset a
// single result is chosen automatically.
func pickCompany(companies []screening.Company, pick int) (screening.Company, error) {
	switch {
	case len(companies) == 0:
		return screening.Company{}, fmt.Errorf("no companies found")
	case pick == 0 && len(companies) == 1:
		return companies[0], nil
	case pick == 0:
		return screening.Company{}, fmt.Errorf("%d companies found; choose one with --pick", len(companies))
	case pick < 1 || pick > len(companies):
		return screening.Company{}, fmt.Errorf("--pick must be between 1 and %d", len(companies))
	default:
		return companies[pick-1], nil
	}
}

func progressPrinter(w io.Writer, defs []screening.SectionDefinition) screening.ProgressFunc {
	labels := make(map[string]string, len(defs))
	for _, d := range defs {
		labels[d.Key] = d.Label
	}
	var (
		mu   sync.Mutex
		done int
	)
	return func(key string, status screening.SectionStatus) {
		if status == screening.StatusPending {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		mark := "ok"
		if status == screening.StatusError {
			mark = "unverified"
		}
		fmt.Fprintf(w, "[%2d/%d] %-28s %s\n", done, len(defs), labels[key], mark)
	}
}

func writeReport(cmd *cobra.Command, prefs store.Store, report screening.ComprehensiveReport) error {
	var out []byte
	switch reportFormat {
	case formatTerminal:
		theme, err := prefs.Theme()
		if err != nil {
			return err
		}
		s, err := export.RenderTerminal(report, string(theme), 0)
		if err != nil {
			return err
		}
		out = []byte(s)
	case formatMarkdown:
		out = []byte(export.BuildMarkdown(report))
	case formatJSON:
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		out = append(b, '\n')
	case formatPDF:
		r := export.NewChromiumPDFRenderer(cfg.Export.ChromePath, cfg.Export.PDFTimeout)
		pdf, err := r.Render(cmd.Context(), report)
		if err != nil {
			return err
		}
		if reportOut == "" {
			reportOut = export.Filename(report.CompanySummary.Name)
		}
		out = pdf
	}

	if reportOut == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(reportOut, out, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", reportOut)
	return nil
}
