package screening

import (
	"encoding/json"
	"testing"
)

func okResult(key, data string) SectionResult {
	return SectionResult{Key: key, Data: json.RawMessage(data), Status: StatusComplete, Attempts: 1}
}

func TestAssembleUnwrapsSections(t *testing.T) {
	company := Company{Name: "Acme Ltd", RegistrationNumber: "123"}
	results := map[string]SectionResult{
		KeyKeyPersonnel:            okResult(KeyKeyPersonnel, `{"personnel":[{"name":"Jane Doe","title":"CEO","bio":"b"}]}`),
		KeyCertifications:          okResult(KeyCertifications, `[{"name":"ISO 27001","issuingBody":"BSI","description":"d"}]`),
		KeyMarketPresence:          okResult(KeyMarketPresence, `{"text":"Global."}`),
		KeyCompanySummary:          okResult(KeyCompanySummary, `{"overview":"Makes widgets."}`),
		KeyFinancialHealthAnalysis: okResult(KeyFinancialHealthAnalysis, `{"Revenue":"$10M","Employees":250,"Listed":false,"Rating":null}`),
	}

	report, err := Assemble(company, Sections, results)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.KeyPersonnel) != 1 || report.KeyPersonnel[0].Name != "Jane Doe" {
		t.Fatalf("unexpected personnel: %+v", report.KeyPersonnel)
	}
	if len(report.Certifications) != 1 || report.Certifications[0].IssuingBody != "BSI" {
		t.Fatalf("unexpected certifications: %+v", report.Certifications)
	}
	if report.MarketPresence != "Global." {
		t.Fatalf("unexpected market presence: %q", report.MarketPresence)
	}
	if report.CompanySummary.Overview != "Makes widgets." || report.CompanySummary.RegistrationNumber != "123" {
		t.Fatalf("unexpected company summary: %+v", report.CompanySummary)
	}
	fin := report.FinancialHealthAnalysis
	if fin["Revenue"] != "$10M" || fin["Employees"] != "250" || fin["Listed"] != "false" || fin["Rating"] != "N/A" {
		t.Fatalf("unexpected financial metrics: %v", fin)
	}
	if oc := report.SectionOutcomes[KeyKeyPersonnel]; oc.Status != StatusComplete || oc.Fallback {
		t.Fatalf("unexpected outcome: %+v", oc)
	}
	if oc := report.SectionOutcomes[KeyGoNoGoAssessment]; oc.Status != StatusError || !oc.Fallback {
		t.Fatalf("missing result should be recorded as fallback error, got %+v", oc)
	}
	if report.DueDiligenceReport.VerificationSummary.CompanyName != "Acme Ltd" {
		t.Fatalf("expected company name in verification summary, got %+v", report.DueDiligenceReport.VerificationSummary)
	}
}

func TestAssembleFallsBackOnShapeMismatch(t *testing.T) {
	results := map[string]SectionResult{
		KeyAMLRiskAssessment: okResult(KeyAMLRiskAssessment, `{"riskLevel":["High"]}`),
		KeyKeyPersonnel:      okResult(KeyKeyPersonnel, `{"people":[]}`),
		KeyMarketPresence:    okResult(KeyMarketPresence, `{"body":"x"}`),
	}
	report, err := Assemble(acme(), Sections, results)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if report.AMLRiskAssessment.RiskLevel != RiskUnknown || report.AMLRiskAssessment.Summary != NotVerified {
		t.Fatalf("expected AML default, got %+v", report.AMLRiskAssessment)
	}
	if report.KeyPersonnel == nil || len(report.KeyPersonnel) != 0 {
		t.Fatalf("expected empty personnel, got %#v", report.KeyPersonnel)
	}
	if report.MarketPresence != NotVerified {
		t.Fatalf("expected market presence default, got %q", report.MarketPresence)
	}
	for _, key := range []string{KeyAMLRiskAssessment, KeyKeyPersonnel, KeyMarketPresence} {
		if oc := report.SectionOutcomes[key]; oc.Status != StatusComplete || !oc.Fallback {
			t.Fatalf("%s: expected complete with fallback, got %+v", key, oc)
		}
	}
}

func TestAssembleRejectsUnknownSection(t *testing.T) {
	defs := []SectionDefinition{{Key: "weather", Default: json.RawMessage(`{}`)}}
	if _, err := Assemble(acme(), defs, nil); err == nil {
		t.Fatal("expected error for a section with no report field")
	}
}

func TestSectionDefaultsFitTheirFields(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Sections {
		if seen[def.Key] {
			t.Fatalf("duplicate section key %s", def.Key)
		}
		seen[def.Key] = true
		if !json.Valid(def.Default) {
			t.Fatalf("%s: default is not valid json", def.Key)
		}
		var r ComprehensiveReport
		if err := assigners[def.Key](&r, acme(), def.Default); err != nil {
			t.Fatalf("%s: default does not decode: %v", def.Key, err)
		}
	}
	if len(Sections) != 16 {
		t.Fatalf("expected 16 sections, got %d", len(Sections))
	}
}

func TestAssembleToleratesMistypedScalars(t *testing.T) {
	results := map[string]SectionResult{
		KeyBeneficialOwnership: okResult(KeyBeneficialOwnership, `{"summary":"Owned by Jane Doe.","ubos":[{"name":"Jane Doe","ownershipPercentage":51,"nationality":"UK"}]}`),
		KeyPEPScreening:        okResult(KeyPEPScreening, `{"isPEPInvolved":"false","details":[]}`),
		KeyDueDiligenceReport:  okResult(KeyDueDiligenceReport, `{"verificationSummary":{"companyName":"Acme Ltd","legalStatus":"Active","existenceConfirmed":"Yes"},"riskConsolidation":"r","finalRecommendation":"f"}`),
	}
	report, err := Assemble(acme(), Sections, results)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	bo := report.BeneficialOwnership
	if bo.Summary != "Owned by Jane Doe." || len(bo.UBOs) != 1 || bo.UBOs[0].OwnershipPercentage != "51" {
		t.Fatalf("unexpected ownership: %+v", bo)
	}
	if report.PEPScreening.IsPEPInvolved {
		t.Fatal(`"false" should decode as not involved`)
	}
	vs := report.DueDiligenceReport.VerificationSummary
	if !vs.ExistenceConfirmed || vs.LegalStatus != "Active" {
		t.Fatalf("unexpected verification summary: %+v", vs)
	}
	for _, key := range []string{KeyBeneficialOwnership, KeyPEPScreening, KeyDueDiligenceReport} {
		if oc := report.SectionOutcomes[key]; oc.Fallback {
			t.Fatalf("%s: tolerant scalars must not fall back, got %+v", key, oc)
		}
	}
}

func TestAssembleFillsOmittedNestedLists(t *testing.T) {
	results := map[string]SectionResult{
		KeyAMLRiskAssessment: okResult(KeyAMLRiskAssessment, `{"riskLevel":"High","summary":"s"}`),
		KeyStrategicAnalysis: okResult(KeyStrategicAnalysis, `{"strengths":["brand"]}`),
	}
	report, err := Assemble(acme(), Sections, results)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	b, err := json.Marshal(report.AMLRiskAssessment)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"riskLevel":"High","summary":"s","redFlags":[]}`; string(b) != want {
		t.Fatalf("aml json=%s want %s", b, want)
	}
	swot := report.StrategicAnalysis
	if swot.Weaknesses == nil || swot.Opportunities == nil || swot.Threats == nil {
		t.Fatalf("expected empty SWOT lists, got %#v", swot)
	}
}

func TestLenientScalarsRejectStructures(t *testing.T) {
	var s LenientString
	if err := json.Unmarshal([]byte(`{"pct":51}`), &s); err == nil {
		t.Fatal("expected error decoding an object into a string")
	}
	var b LenientBool
	if err := json.Unmarshal([]byte(`1`), &b); err != nil || !b {
		t.Fatalf("expected 1 to decode as true, got %v err=%v", b, err)
	}
	if err := json.Unmarshal([]byte(`"unknown"`), &b); err != nil || b {
		t.Fatalf("expected unrecognised string to decode as false, got %v err=%v", b, err)
	}
}
