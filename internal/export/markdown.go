// Package export renders a finished report as Markdown, PDF or styled
// terminal output.
package export

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joelkehle/kyc-screener/internal/screening"
)

const (
	ReportTitle = "Comprehensive Company Report"
	na          = "N/A"
)

var filenameUnsafe = regexp.MustCompile(`[\s.]`)

// Filename is the download name for a report's PDF.
func Filename(companyName string) string {
	return "KYC-Report-" + filenameUnsafe.ReplaceAllString(companyName, "_") + ".pdf"
}

type mdBuilder struct {
	b strings.Builder
}

func (m *mdBuilder) h1(s string) { fmt.Fprintf(&m.b, "# %s\n\n", inline(s)) }
func (m *mdBuilder) h2(s string) { fmt.Fprintf(&m.b, "## %s\n\n", inline(s)) }
func (m *mdBuilder) h4(s string) { fmt.Fprintf(&m.b, "#### %s\n\n", inline(s)) }

func (m *mdBuilder) text(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = na
	}
	m.b.WriteString(s + "\n\n")
}

func (m *mdBuilder) kv(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = na
	}
	fmt.Fprintf(&m.b, "**%s:** %s\n\n", inline(key), inline(value))
}

func (m *mdBuilder) list(items []string, empty string) {
	n := 0
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		fmt.Fprintf(&m.b, "- %s\n", inline(it))
		n++
	}
	if n == 0 {
		m.b.WriteString("_" + empty + "_\n")
	}
	m.b.WriteString("\n")
}

func (m *mdBuilder) table(header []string, rows [][]string) {
	m.b.WriteString("| " + strings.Join(cells(header), " | ") + " |\n")
	m.b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, r := range rows {
		m.b.WriteString("| " + strings.Join(cells(r), " | ") + " |\n")
	}
	m.b.WriteString("\n")
}

func cells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			c = na
		}
		out[i] = strings.ReplaceAll(inline(c), "|", `\|`)
	}
	return out
}

// inline collapses newlines so a value cannot break out of its block.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// BuildMarkdown renders the report in its printed order. Empty lists get a
// placeholder line and missing values render as N/A.
func BuildMarkdown(r screening.ComprehensiveReport) string {
	var m mdBuilder
	m.h1(ReportTitle)
	m.text("**" + inline(r.CompanySummary.Name) + "**")
	if !r.GeneratedAt.IsZero() {
		m.kv("Generated", r.GeneratedAt.Format("January 2, 2006 15:04 MST"))
	}

	m.h2("Executive Summary")
	m.kv("Overall Risk", string(r.ExecutiveSummary.OverallRisk))
	m.text(r.ExecutiveSummary.Summary)
	m.h4("Key Findings")
	m.list(r.ExecutiveSummary.KeyFindings, na)

	m.h2("Go / No-Go Assessment")
	m.kv("Final Recommendation", string(r.GoNoGoAssessment.Recommendation))
	m.h4("Justification")
	m.text(r.GoNoGoAssessment.Justification)

	m.h2("Company Summary")
	m.text(r.CompanySummary.Overview)
	m.kv("Registration No.", r.CompanySummary.RegistrationNumber)
	m.kv("Address", r.CompanySummary.Address)
	m.kv("Website", r.CompanySummary.Website)

	writeAML(&m, r.AMLRiskAssessment)

	m.h2("Due Diligence Report")
	vs := r.DueDiligenceReport.VerificationSummary
	m.h4("Verification Summary")
	m.kv("Company Name", vs.CompanyName)
	m.kv("Legal Status", vs.LegalStatus)
	m.kv("Registration Details", vs.RegistrationDetails)
	m.kv("Regulatory Oversight", vs.RegulatoryOversight)
	m.kv("Existence Confirmed", yesNo(bool(vs.ExistenceConfirmed)))
	m.h4("Risk Consolidation")
	m.text(r.DueDiligenceReport.RiskConsolidation)
	m.h4("Final Recommendation")
	m.text(r.DueDiligenceReport.FinalRecommendation)

	m.h2("PEP Screening")
	m.kv("PEP Involved", yesNo(bool(r.PEPScreening.IsPEPInvolved)))
	if r.PEPScreening.IsPEPInvolved && len(r.PEPScreening.Details) > 0 {
		rows := make([][]string, 0, len(r.PEPScreening.Details))
		for _, p := range r.PEPScreening.Details {
			rows = append(rows, []string{p.Name, p.Title, p.Relationship, p.Reason})
		}
		m.table([]string{"Name", "Title", "Relationship", "Reason"}, rows)
	}

	m.h2("Beneficial Ownership")
	m.text(r.BeneficialOwnership.Summary)
	if len(r.BeneficialOwnership.UBOs) > 0 {
		rows := make([][]string, 0, len(r.BeneficialOwnership.UBOs))
		for _, u := range r.BeneficialOwnership.UBOs {
			rows = append(rows, []string{u.Name, string(u.OwnershipPercentage), string(u.Nationality)})
		}
		m.table([]string{"Name", "Ownership", "Nationality"}, rows)
	}

	m.h2("Regulatory Compliance")
	m.text(r.RegulatoryCompliance.Summary)
	m.h4("Legal Issues")
	m.list(r.RegulatoryCompliance.LegalIssues, "No legal issues identified.")
	m.h4("Regulatory Actions")
	m.list(r.RegulatoryCompliance.RegulatoryActions, "No regulatory actions identified.")

	m.h2("Certifications")
	if len(r.Certifications) > 0 {
		rows := make([][]string, 0, len(r.Certifications))
		for _, c := range r.Certifications {
			rows = append(rows, []string{c.Name, c.IssuingBody, c.Description})
		}
		m.table([]string{"Certification", "Issuing Body", "Description"}, rows)
	} else {
		m.text("No certifications identified.")
	}

	m.h2("Reputational Risk")
	m.kv("Sentiment", string(r.ReputationalRisk.Sentiment))
	m.text(r.ReputationalRisk.Summary)
	m.h4("Key Mentions")
	m.list(r.ReputationalRisk.KeyMentions, "No key mentions identified.")

	m.h2("Social Media Presence")
	m.text(r.SocialMediaPresence.Summary)
	if len(r.SocialMediaPresence.Profiles) > 0 {
		rows := make([][]string, 0, len(r.SocialMediaPresence.Profiles))
		for _, p := range r.SocialMediaPresence.Profiles {
			rows = append(rows, []string{p.Platform, p.URL, p.Summary})
		}
		m.table([]string{"Platform", "URL", "Summary"}, rows)
	}

	m.h2("Key Personnel")
	if len(r.KeyPersonnel) > 0 {
		rows := make([][]string, 0, len(r.KeyPersonnel))
		for _, p := range r.KeyPersonnel {
			rows = append(rows, []string{p.Name, p.Title, p.Bio})
		}
		m.table([]string{"Name", "Title", "Biography"}, rows)
	} else {
		m.text("No key personnel identified.")
	}

	m.h2("Financial Health Analysis")
	if len(r.FinancialHealthAnalysis) > 0 {
		keys := make([]string, 0, len(r.FinancialHealthAnalysis))
		for k := range r.FinancialHealthAnalysis {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, r.FinancialHealthAnalysis[k]})
		}
		m.table([]string{"Metric", "Value"}, rows)
	} else {
		m.text("No financial metrics available.")
	}

	m.h2("Market Presence")
	m.text(r.MarketPresence)

	m.h2("Products and Services")
	m.text(r.ProductsAndServices)

	m.h2("Strategic Analysis (SWOT)")
	m.h4("Strengths")
	m.list(r.StrategicAnalysis.Strengths, na)
	m.h4("Weaknesses")
	m.list(r.StrategicAnalysis.Weaknesses, na)
	m.h4("Opportunities")
	m.list(r.StrategicAnalysis.Opportunities, na)
	m.h4("Threats")
	m.list(r.StrategicAnalysis.Threats, na)

	if len(r.Sources.Web) > 0 || len(r.Sources.Maps) > 0 {
		m.h2("Sources")
		writeSources(&m, "Web Sources", r.Sources.Web)
		writeSources(&m, "Map Sources", r.Sources.Maps)
	}
	return strings.TrimRight(m.b.String(), "\n") + "\n"
}

func writeAML(m *mdBuilder, a screening.AMLRiskAssessment) {
	m.h2("AML Risk Assessment")
	m.kv("Risk Level", string(a.RiskLevel))
	m.h4("Summary")
	m.text(a.Summary)

	if b := a.DetailedBreakdown; b != nil {
		m.h4("Risk Factors Breakdown")
		m.kv(fmt.Sprintf("Jurisdiction Risk (%s)", b.JurisdictionRisk.RiskLevel), b.JurisdictionRisk.Summary)
		m.kv(fmt.Sprintf("Industry Risk (%s)", b.IndustryRisk.RiskLevel), b.IndustryRisk.Summary)
		m.h4("Sanctions Matches")
		m.text(b.SanctionsMatches.Summary)
		if len(b.SanctionsMatches.Matches) > 0 {
			rows := make([][]string, 0, len(b.SanctionsMatches.Matches))
			for _, s := range b.SanctionsMatches.Matches {
				rows = append(rows, []string{s.Name, s.List, s.Details})
			}
			m.table([]string{"Name", "List", "Details"}, rows)
		}
	}

	m.h4("Red Flags")
	m.list(a.RedFlags, "No red flags identified.")
	m.h4("Crime Typologies")
	m.list(a.CrimeTypologies, "No crime typologies identified.")
	m.h4("Mitigation Strategies")
	m.list(a.MitigationStrategies, "No mitigation strategies identified.")
}

func writeSources(m *mdBuilder, heading string, sources []screening.ReportSource) {
	if len(sources) == 0 {
		return
	}
	m.h4(heading)
	for _, s := range sources {
		title := inline(s.Title)
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(&m.b, "- [%s](%s)\n", title, s.URI)
	}
	m.b.WriteString("\n")
}
