package screening

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type assignFunc func(r *ComprehensiveReport, c Company, data json.RawMessage) error

var assigners = map[string]assignFunc{
	KeyExecutiveSummary: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.ExecutiveSummary)
	},
	KeyCompanySummary: func(r *ComprehensiveReport, c Company, d json.RawMessage) error {
		var v struct {
			Overview string `json:"overview"`
		}
		if err := decodeInto(d, &v); err != nil {
			return err
		}
		r.CompanySummary = CompanyProfile{Company: c, Overview: v.Overview}
		return nil
	},
	KeyKeyPersonnel: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return unwrapList(d, "personnel", &r.KeyPersonnel)
	},
	KeyBeneficialOwnership: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.BeneficialOwnership)
	},
	KeyPEPScreening: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.PEPScreening)
	},
	KeyAMLRiskAssessment: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.AMLRiskAssessment)
	},
	KeyRegulatoryCompliance: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.RegulatoryCompliance)
	},
	KeyFinancialHealthAnalysis: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		m, err := decodeStringMap(d)
		if err != nil {
			return err
		}
		r.FinancialHealthAnalysis = m
		return nil
	},
	KeyMarketPresence: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return unwrapText(d, &r.MarketPresence)
	},
	KeyProductsAndServices: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return unwrapText(d, &r.ProductsAndServices)
	},
	KeyStrategicAnalysis: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.StrategicAnalysis)
	},
	KeyReputationalRisk: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.ReputationalRisk)
	},
	KeySocialMediaPresence: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.SocialMediaPresence)
	},
	KeyCertifications: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return unwrapList(d, "certifications", &r.Certifications)
	},
	KeyDueDiligenceReport: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.DueDiligenceReport)
	},
	KeyGoNoGoAssessment: func(r *ComprehensiveReport, _ Company, d json.RawMessage) error {
		return decodeInto(d, &r.GoNoGoAssessment)
	},
}

// Assemble builds the report from per-section results. Sections with no
// result, or whose data does not fit the target field, get their default,
// so every field of the returned report is populated.
func Assemble(company Company, defs []SectionDefinition, results map[string]SectionResult) (ComprehensiveReport, error) {
	report := ComprehensiveReport{
		Sources:         ReportSources{Web: []ReportSource{}, Maps: []ReportSource{}},
		SectionOutcomes: make(map[string]SectionOutcome, len(defs)),
	}
	for _, def := range defs {
		assign, ok := assigners[def.Key]
		if !ok {
			return report, fmt.Errorf("no report field for section %q", def.Key)
		}
		res, ok := results[def.Key]
		outcome := SectionOutcome{Status: res.Status, Fallback: res.Fallback, Attempts: res.Attempts}
		data := res.Data
		if !ok || len(data) == 0 {
			data = def.Default
			outcome = SectionOutcome{Status: StatusError, Fallback: true}
		}
		if err := assign(&report, company, data); err != nil {
			if err := assign(&report, company, def.Default); err != nil {
				return report, fmt.Errorf("section %s default does not fit its field: %w", def.Key, err)
			}
			outcome.Fallback = true
		}
		report.SectionOutcomes[def.Key] = outcome
		if ok {
			MergeSources(&report.Sources, res.Sources)
		}
	}
	normalize(&report, company)
	return report, nil
}

// normalize replaces nil collections, nested ones included, so the report
// never serializes a null for a populated section.
func normalize(r *ComprehensiveReport, c Company) {
	emptyIfNil(&r.KeyPersonnel)
	emptyIfNil(&r.Certifications)
	if r.FinancialHealthAnalysis == nil {
		r.FinancialHealthAnalysis = map[string]string{}
	}
	emptyIfNil(&r.ExecutiveSummary.KeyFindings)
	emptyIfNil(&r.StrategicAnalysis.Strengths)
	emptyIfNil(&r.StrategicAnalysis.Weaknesses)
	emptyIfNil(&r.StrategicAnalysis.Opportunities)
	emptyIfNil(&r.StrategicAnalysis.Threats)
	emptyIfNil(&r.AMLRiskAssessment.RedFlags)
	emptyIfNil(&r.PEPScreening.Details)
	emptyIfNil(&r.BeneficialOwnership.UBOs)
	emptyIfNil(&r.RegulatoryCompliance.LegalIssues)
	emptyIfNil(&r.RegulatoryCompliance.RegulatoryActions)
	emptyIfNil(&r.ReputationalRisk.KeyMentions)
	emptyIfNil(&r.SocialMediaPresence.Profiles)
	if r.CompanySummary.Name == "" {
		r.CompanySummary.Company = c
	}
	if r.DueDiligenceReport.VerificationSummary.CompanyName == "" {
		r.DueDiligenceReport.VerificationSummary.CompanyName = c.Name
	}
}

func emptyIfNil[T any](s *[]T) {
	if *s == nil {
		*s = []T{}
	}
}

var errNullData = errors.New("section data is null")

func decodeInto[T any](data json.RawMessage, dst *T) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errNullData
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// unwrapList accepts either {"<field>": [...]} or a bare array.
func unwrapList[T any](data json.RawMessage, field string, dst *[]T) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeInto(trimmed, dst)
	}
	var wrapper map[string]json.RawMessage
	if err := decodeInto(trimmed, &wrapper); err != nil {
		return err
	}
	inner, ok := wrapper[field]
	if !ok {
		return fmt.Errorf("missing %q list", field)
	}
	var list []T
	if err := decodeInto(inner, &list); err != nil {
		return err
	}
	if list == nil {
		list = []T{}
	}
	*dst = list
	return nil
}

func unwrapText(data json.RawMessage, dst *string) error {
	var v struct {
		Text *string `json:"text"`
	}
	if err := decodeInto(data, &v); err != nil {
		return err
	}
	if v.Text == nil {
		return errors.New(`missing "text"`)
	}
	*dst = *v.Text
	return nil
}

// decodeStringMap flattens a metric object into display strings; models
// often answer numbers or booleans where strings were asked for.
func decodeStringMap(data json.RawMessage) (map[string]string, error) {
	var raw map[string]any
	if err := decodeInto(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			out[k] = "N/A"
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			b, err := json.Marshal(t)
			if err != nil {
				return nil, err
			}
			out[k] = string(b)
		}
	}
	return out, nil
}
