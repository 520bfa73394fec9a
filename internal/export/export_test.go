package export

import (
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/kyc-screener/internal/screening"
)

func defaultReport(t *testing.T) screening.ComprehensiveReport {
	t.Helper()
	r, err := screening.Assemble(screening.Company{Name: "Acme Ltd."}, screening.Sections, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return r
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Acme Ltd.":      "KYC-Report-Acme_Ltd_.pdf",
		"Tesla, Inc.":    "KYC-Report-Tesla,_Inc_.pdf",
		"Foo\tBar  S.A.": "KYC-Report-Foo_Bar__S_A_.pdf",
		"NoSpaces":       "KYC-Report-NoSpaces.pdf",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildMarkdownSectionOrder(t *testing.T) {
	md := BuildMarkdown(defaultReport(t))
	order := []string{
		"# " + ReportTitle,
		"## Executive Summary",
		"## Go / No-Go Assessment",
		"## Company Summary",
		"## AML Risk Assessment",
		"## Due Diligence Report",
		"## PEP Screening",
		"## Beneficial Ownership",
		"## Regulatory Compliance",
		"## Certifications",
		"## Reputational Risk",
		"## Social Media Presence",
		"## Key Personnel",
		"## Financial Health Analysis",
		"## Market Presence",
		"## Products and Services",
		"## Strategic Analysis (SWOT)",
	}
	last := -1
	for _, h := range order {
		idx := strings.Index(md, h+"\n")
		if idx < 0 {
			t.Fatalf("missing heading %q", h)
		}
		if idx <= last {
			t.Fatalf("heading %q out of order", h)
		}
		last = idx
	}
	if strings.Contains(md, "## Sources") {
		t.Fatal("sources heading should be omitted without citations")
	}
}

func TestBuildMarkdownPlaceholders(t *testing.T) {
	md := BuildMarkdown(defaultReport(t))
	for _, want := range []string{
		"_No red flags identified._",
		"No key personnel identified.",
		"No certifications identified.",
		"**Registration No.:** N/A",
		"**Final Recommendation:** No-Go",
		"**Existence Confirmed:** No",
		screening.NotVerified,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown", want)
		}
	}
}

func TestBuildMarkdownTablesAndSources(t *testing.T) {
	r := defaultReport(t)
	r.GeneratedAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	r.KeyPersonnel = []screening.KeyPersonnel{{Name: "Jane | Doe", Title: "CEO", Bio: "line one\nline two"}}
	r.PEPScreening = screening.PEPScreening{IsPEPInvolved: true, Details: []screening.PEPScreeningDetail{{Name: "Minister X", Title: "Director", Reason: "Cabinet member"}}}
	r.AMLRiskAssessment.DetailedBreakdown = &screening.RiskBreakdown{
		JurisdictionRisk: screening.RiskFactor{RiskLevel: screening.RiskHigh, Summary: "Offshore."},
		SanctionsMatches: screening.SanctionsMatches{Matches: []screening.SanctionMatchDetail{{Name: "Acme", List: "OFAC SDN"}}},
	}
	r.Sources.Web = []screening.ReportSource{{Title: "Registry", URI: "https://registry.example/acme"}}
	r.Sources.Maps = []screening.ReportSource{{Title: "", URI: "https://maps.example/1"}}

	md := BuildMarkdown(r)
	for _, want := range []string{
		"| Jane \\| Doe | CEO | line one line two |",
		"| Minister X | Director | N/A | Cabinet member |",
		"**Jurisdiction Risk (High):** Offshore.",
		"| Acme | OFAC SDN | N/A |",
		"#### Web Sources\n\n- [Registry](https://registry.example/acme)",
		"- [https://maps.example/1](https://maps.example/1)",
		"**Generated:** March 1, 2026 09:30 UTC",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestBuildHTMLCoverAndRiskHooks(t *testing.T) {
	r := defaultReport(t)
	r.AMLRiskAssessment.RiskLevel = screening.RiskHigh
	out, err := buildHTML(r, "March 1, 2026")
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	if !strings.Contains(out, "<p class='company'>Acme Ltd.</p>") || !strings.Contains(out, "Date: March 1, 2026") {
		t.Fatal("expected cover page with company and date")
	}
	if !strings.Contains(out, `<span class="risk-High">High</span>`) {
		t.Fatal("expected risk hook on AML risk level")
	}
	if !strings.Contains(out, "<table>") {
		t.Fatal("expected GFM tables in html")
	}
}

func TestHeaderFooterTemplates(t *testing.T) {
	h := headerTemplate("A&B <Ltd>")
	if !strings.Contains(h, "KYC Business Screener | A&amp;B &lt;Ltd&gt;") {
		t.Fatalf("unexpected header: %s", h)
	}
	f := footerTemplate("March 1, 2026")
	if !strings.Contains(f, `Page <span class="pageNumber"></span> of <span class="totalPages"></span>`) || !strings.Contains(f, "March 1, 2026") {
		t.Fatalf("unexpected footer: %s", f)
	}
}

func TestRenderTerminal(t *testing.T) {
	for _, theme := range []string{"light", "dark", "bogus"} {
		out, err := RenderTerminal(defaultReport(t), theme, 80)
		if err != nil {
			t.Fatalf("%s: %v", theme, err)
		}
		if !strings.Contains(out, "Executive") {
			t.Fatalf("%s: rendered output missing heading", theme)
		}
	}
}
