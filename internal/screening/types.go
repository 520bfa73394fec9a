package screening

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joelkehle/kyc-screener/internal/llm"
)

// NotVerified is the placeholder used by section defaults.
const NotVerified = "Information could not be verified."

type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentMixed    Sentiment = "Mixed"
	SentimentUnknown  Sentiment = "Unknown"
)

type Recommendation string

const (
	RecommendGo               Recommendation = "Go"
	RecommendGoWithConditions Recommendation = "Go with conditions"
	RecommendNoGo             Recommendation = "No-Go"
)

// LenientString decodes from a JSON string, number or boolean. Models
// answer 51 where "51%" was asked for.
type LenientString string

func (s *LenientString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = LenientString(t)
	case float64:
		*s = LenientString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = LenientString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("cannot decode %s into a string", trimmed)
	}
	return nil
}

// LenientBool decodes from a JSON boolean, a yes/no style string or a
// number. Unrecognised strings decode as false.
type LenientBool bool

func (b *LenientBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*b = false
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = LenientBool(t)
	case float64:
		*b = t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "confirmed":
			*b = true
		default:
			*b = false
		}
	default:
		return fmt.Errorf("cannot decode %s into a boolean", trimmed)
	}
	return nil
}

type Company struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	Address            string `json:"address,omitempty"`
	Website            string `json:"website,omitempty"`
	Description        string `json:"description,omitempty"`
}

// Identifier is how prompts refer to the company.
func (c Company) Identifier() string {
	name := strings.TrimSpace(c.Name)
	if reg := strings.TrimSpace(c.RegistrationNumber); reg != "" {
		return name + " (Reg: " + reg + ")"
	}
	return name
}

type ReportSource = llm.Citation

type ReportSources struct {
	Web  []ReportSource `json:"web"`
	Maps []ReportSource `json:"maps"`
}

type ExecutiveSummary struct {
	Summary     string    `json:"summary"`
	OverallRisk RiskLevel `json:"overallRisk"`
	KeyFindings []string  `json:"keyFindings"`
}

type GoNoGoAssessment struct {
	Recommendation Recommendation `json:"recommendation"`
	Justification  string         `json:"justification"`
}

type CompanyProfile struct {
	Company
	Overview string `json:"overview"`
}

type KeyPersonnel struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio"`
}

type StrategicAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type RiskFactor struct {
	RiskLevel RiskLevel `json:"riskLevel"`
	Summary   string    `json:"summary"`
}

type SanctionMatchDetail struct {
	Name    string `json:"name"`
	List    string `json:"list"`
	Details string `json:"details"`
}

type SanctionsMatches struct {
	RiskFactor
	Matches []SanctionMatchDetail `json:"matches,omitempty"`
}

type RiskBreakdown struct {
	JurisdictionRisk RiskFactor       `json:"jurisdictionRisk"`
	IndustryRisk     RiskFactor       `json:"industryRisk"`
	SanctionsMatches SanctionsMatches `json:"sanctionsMatches"`
}

type AMLRiskAssessment struct {
	RiskLevel            RiskLevel      `json:"riskLevel"`
	Summary              string         `json:"summary"`
	RedFlags             []string       `json:"redFlags"`
	DetailedBreakdown    *RiskBreakdown `json:"detailedBreakdown,omitempty"`
	CrimeTypologies      []string       `json:"crimeTypologies,omitempty"`
	MitigationStrategies []string       `json:"mitigationStrategies,omitempty"`
}

type PEPScreeningDetail struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Reason       string `json:"reason"`
	Relationship string `json:"relationship,omitempty"`
}

type PEPScreening struct {
	IsPEPInvolved LenientBool          `json:"isPEPInvolved"`
	Details       []PEPScreeningDetail `json:"details"`
}

type UBO struct {
	Name                string `json:"name"`
	OwnershipPercentage LenientString `json:"ownershipPercentage,omitempty"`
	Nationality         LenientString `json:"nationality,omitempty"`
}

type BeneficialOwnership struct {
	Summary string `json:"summary"`
	UBOs    []UBO  `json:"ubos"`
}

type RegulatoryCompliance struct {
	Summary           string   `json:"summary"`
	LegalIssues       []string `json:"legalIssues"`
	RegulatoryActions []string `json:"regulatoryActions"`
}

type ReputationalRisk struct {
	Summary     string    `json:"summary"`
	Sentiment   Sentiment `json:"sentiment"`
	KeyMentions []string  `json:"keyMentions"`
}

type SocialMediaProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
}

type SocialMediaPresence struct {
	Summary  string               `json:"summary"`
	Profiles []SocialMediaProfile `json:"profiles"`
}

type Certification struct {
	Name        string `json:"name"`
	IssuingBody string `json:"issuingBody"`
	Description string `json:"description"`
}

type VerificationDetails struct {
	CompanyName         string      `json:"companyName"`
	LegalStatus         string      `json:"legalStatus"`
	RegistrationDetails string      `json:"registrationDetails"`
	RegulatoryOversight string      `json:"regulatoryOversight"`
	ExistenceConfirmed  LenientBool `json:"existenceConfirmed"`
}

type DueDiligenceReport struct {
	VerificationSummary VerificationDetails `json:"verificationSummary"`
	RiskConsolidation   string              `json:"riskConsolidation"`
	FinalRecommendation string              `json:"finalRecommendation"`
}

type SectionStatus string

const (
	StatusPending  SectionStatus = "pending"
	StatusComplete SectionStatus = "complete"
	StatusError    SectionStatus = "error"
)

// SectionOutcome records how a section's field was filled.
type SectionOutcome struct {
	Status   SectionStatus `json:"status"`
	Fallback bool          `json:"fallback"`
	Attempts int           `json:"attempts"`
}

// ComprehensiveReport is populated section by section and is read-only once
// Assemble returns it. JSON field names match the section keys.
type ComprehensiveReport struct {
	ExecutiveSummary        ExecutiveSummary     `json:"executiveSummary"`
	GoNoGoAssessment        GoNoGoAssessment     `json:"goNoGoAssessment"`
	CompanySummary          CompanyProfile       `json:"companySummary"`
	KeyPersonnel            []KeyPersonnel       `json:"keyPersonnel"`
	FinancialHealthAnalysis map[string]string    `json:"financialHealthAnalysis"`
	MarketPresence          string               `json:"marketPresence"`
	ProductsAndServices     string               `json:"productsAndServices"`
	StrategicAnalysis       StrategicAnalysis    `json:"strategicAnalysis"`
	AMLRiskAssessment       AMLRiskAssessment    `json:"amlRiskAssessment"`
	PEPScreening            PEPScreening         `json:"pepScreening"`
	BeneficialOwnership     BeneficialOwnership  `json:"beneficialOwnership"`
	RegulatoryCompliance    RegulatoryCompliance `json:"regulatoryCompliance"`
	ReputationalRisk        ReputationalRisk     `json:"reputationalRisk"`
	SocialMediaPresence     SocialMediaPresence  `json:"socialMediaPresence"`
	Certifications          []Certification      `json:"certifications"`
	DueDiligenceReport      DueDiligenceReport   `json:"dueDiligenceReport"`

	Sources         ReportSources             `json:"sources"`
	SectionOutcomes map[string]SectionOutcome `json:"sectionOutcomes"`
	GeneratedAt     time.Time                 `json:"generatedAt"`
}
