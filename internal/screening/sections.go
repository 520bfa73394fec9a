package screening

import (
	"encoding/json"
	"strings"
)

// Section keys. Each one names exactly one ComprehensiveReport field.
const (
	KeyExecutiveSummary        = "executiveSummary"
	KeyCompanySummary          = "companySummary"
	KeyKeyPersonnel            = "keyPersonnel"
	KeyBeneficialOwnership     = "beneficialOwnership"
	KeyPEPScreening            = "pepScreening"
	KeyAMLRiskAssessment       = "amlRiskAssessment"
	KeyRegulatoryCompliance    = "regulatoryCompliance"
	KeyFinancialHealthAnalysis = "financialHealthAnalysis"
	KeyMarketPresence          = "marketPresence"
	KeyProductsAndServices     = "productsAndServices"
	KeyStrategicAnalysis       = "strategicAnalysis"
	KeyReputationalRisk        = "reputationalRisk"
	KeySocialMediaPresence     = "socialMediaPresence"
	KeyCertifications          = "certifications"
	KeyDueDiligenceReport      = "dueDiligenceReport"
	KeyGoNoGoAssessment        = "goNoGoAssessment"
)

const companyPlaceholder = "{company}"

// SectionDefinition describes one independently generated slice of the report.
type SectionDefinition struct {
	Key        string
	Label      string
	Prompt     string
	ExpectJSON bool
	Default    json.RawMessage
}

// PromptFor renders the section prompt for a company.
func (d SectionDefinition) PromptFor(c Company) string {
	return strings.ReplaceAll(d.Prompt, companyPlaceholder, c.Identifier())
}

const executiveSummaryPrompt = `Act as a senior KYC analyst at a bank. Write an executive summary of the due-diligence findings for {company}.
Weigh ownership transparency, sanctions exposure, politically exposed persons, adverse media and regulatory history.
Respond with a JSON object with the keys:
  "summary": a concise paragraph,
  "overallRisk": one of "Low", "Medium", "High", "Unknown",
  "keyFindings": an array of 3-6 short strings.`

const companySummaryPrompt = `Generate a detailed company summary and overview for {company}.
Respond with a JSON object containing a single key: "overview", which holds the detailed string summary.`

const keyPersonnelPrompt = `Identify the key personnel (CEO, CTO, CFO, board members, etc.) for {company}.
Respond with a JSON object containing a "personnel" key, which is an array of objects.
Each object should have "name", "title", and "bio" keys.`

const beneficialOwnershipPrompt = `Identify the ultimate beneficial owners (UBOs) of {company}: natural persons holding 25% or more of shares or voting rights, or exercising control by other means.
Respond with a JSON object with the keys:
  "summary": a description of the ownership structure and how transparent it is,
  "ubos": an array of objects with "name", "ownershipPercentage" and "nationality" (omit unknown values).`

const pepScreeningPrompt = `Screen the directors, executives and beneficial owners of {company} for politically exposed persons (PEPs), including their family members and close associates.
Respond with a JSON object with the keys:
  "isPEPInvolved": true or false,
  "details": an array of objects with "name", "title", "reason" and optionally "relationship".`

const amlRiskAssessmentPrompt = `Perform an anti-money-laundering (AML) risk assessment of {company}.
Consider the jurisdictions it operates in, its industry, and any matches on sanctions lists (OFAC, EU, UN, UK HMT).
Respond with a JSON object with the keys:
  "riskLevel": one of "Low", "Medium", "High", "Unknown",
  "summary": a paragraph explaining the rating,
  "redFlags": an array of strings,
  "detailedBreakdown": an object with "jurisdictionRisk" and "industryRisk" (each {"riskLevel", "summary"}) and "sanctionsMatches" ({"riskLevel", "summary", "matches": [{"name", "list", "details"}]}),
  "crimeTypologies": an array of relevant financial-crime typologies,
  "mitigationStrategies": an array of recommended mitigating controls.`

const regulatoryCompliancePrompt = `Review the regulatory compliance record of {company}: licences, supervisory authorities, enforcement actions, fines and litigation.
Respond with a JSON object with the keys "summary" (string), "legalIssues" (array of strings) and "regulatoryActions" (array of strings).`

const financialHealthPrompt = `Analyse the financial health of {company}. Include metrics such as annual revenue, profitability, debt levels, market capitalisation and credit ratings where available.
Respond with a simple JSON object where keys are the financial metric and values are strings representing the figures.`

const marketPresencePrompt = `Describe the market presence of {company}. Include information on their target audience, key markets, and major competitors. Respond with plain text.`

const productsAndServicesPrompt = `List and describe the main products and services offered by {company}. Respond with plain text.`

const strategicAnalysisPrompt = `Conduct a SWOT analysis for {company}.
Respond with a JSON object with four keys: "strengths", "weaknesses", "opportunities", and "threats". Each key should hold an array of 3-5 descriptive strings.`

const reputationalRiskPrompt = `Assess the reputational risk of {company} from news coverage, adverse media, customer reviews and public controversies.
Respond with a JSON object with the keys:
  "summary": a paragraph,
  "sentiment": one of "Positive", "Neutral", "Negative", "Mixed", "Unknown",
  "keyMentions": an array of short strings describing notable coverage.`

const socialMediaPresencePrompt = `Find the official social media presence of {company} (LinkedIn, X/Twitter, Facebook, Instagram, YouTube and similar).
Respond with a JSON object with the keys "summary" (string) and "profiles" (array of objects with "platform", "url" and "summary").`

const certificationsPrompt = `List the certifications, accreditations and quality or security standards held by {company} (for example ISO 9001, ISO 27001, SOC 2, PCI DSS).
Respond with a JSON object containing a "certifications" key, which is an array of objects with "name", "issuingBody" and "description".`

const dueDiligencePrompt = `Prepare a formal due-diligence verification for {company} as required for customer onboarding at a regulated bank.
Respond with a JSON object with the keys:
  "verificationSummary": {"companyName", "legalStatus", "registrationDetails", "regulatoryOversight", "existenceConfirmed" (true or false)},
  "riskConsolidation": a paragraph consolidating all identified risks,
  "finalRecommendation": a paragraph with the onboarding recommendation.`

const goNoGoPrompt = `Based on publicly available information about {company}, decide whether a bank should enter into a business relationship with it.
Respond with a JSON object with the keys "recommendation" (one of "Go", "Go with conditions", "No-Go") and "justification" (string).`

// Sections lists every report section in display order. It must not be
// modified; callers that need a subset should copy it.
var Sections = []SectionDefinition{
	{
		Key: KeyExecutiveSummary, Label: "Executive summary", Prompt: executiveSummaryPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"summary":"` + NotVerified + `","overallRisk":"Unknown","keyFindings":[]}`),
	},
	{
		Key: KeyCompanySummary, Label: "Company overview", Prompt: companySummaryPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"overview":"` + NotVerified + `"}`),
	},
	{
		Key: KeyKeyPersonnel, Label: "Key personnel", Prompt: keyPersonnelPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"personnel":[]}`),
	},
	{
		Key: KeyBeneficialOwnership, Label: "Beneficial ownership", Prompt: beneficialOwnershipPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"summary":"` + NotVerified + `","ubos":[]}`),
	},
	{
		Key: KeyPEPScreening, Label: "PEP screening", Prompt: pepScreeningPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"isPEPInvolved":false,"details":[]}`),
	},
	{
		Key: KeyAMLRiskAssessment, Label: "AML risk assessment", Prompt: amlRiskAssessmentPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"riskLevel":"Unknown","summary":"` + NotVerified + `","redFlags":[]}`),
	},
	{
		Key: KeyRegulatoryCompliance, Label: "Regulatory compliance", Prompt: regulatoryCompliancePrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"summary":"` + NotVerified + `","legalIssues":[],"regulatoryActions":[]}`),
	},
	{
		Key: KeyFinancialHealthAnalysis, Label: "Financial health", Prompt: financialHealthPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"Status":"` + NotVerified + `"}`),
	},
	{
		Key: KeyMarketPresence, Label: "Market presence", Prompt: marketPresencePrompt,
		Default: json.RawMessage(`{"text":"` + NotVerified + `"}`),
	},
	{
		Key: KeyProductsAndServices, Label: "Products and services", Prompt: productsAndServicesPrompt,
		Default: json.RawMessage(`{"text":"` + NotVerified + `"}`),
	},
	{
		Key: KeyStrategicAnalysis, Label: "SWOT analysis", Prompt: strategicAnalysisPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"strengths":[],"weaknesses":[],"opportunities":[],"threats":[]}`),
	},
	{
		Key: KeyReputationalRisk, Label: "Reputational risk", Prompt: reputationalRiskPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"summary":"` + NotVerified + `","sentiment":"Unknown","keyMentions":[]}`),
	},
	{
		Key: KeySocialMediaPresence, Label: "Social media presence", Prompt: socialMediaPresencePrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"summary":"` + NotVerified + `","profiles":[]}`),
	},
	{
		Key: KeyCertifications, Label: "Certifications", Prompt: certificationsPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"certifications":[]}`),
	},
	{
		Key: KeyDueDiligenceReport, Label: "Due-diligence verification", Prompt: dueDiligencePrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"verificationSummary":{"companyName":"","legalStatus":"` + NotVerified + `","registrationDetails":"` + NotVerified + `","regulatoryOversight":"` + NotVerified + `","existenceConfirmed":false},"riskConsolidation":"` + NotVerified + `","finalRecommendation":"` + NotVerified + `"}`),
	},
	{
		Key: KeyGoNoGoAssessment, Label: "Go / No-Go assessment", Prompt: goNoGoPrompt, ExpectJSON: true,
		Default: json.RawMessage(`{"recommendation":"No-Go","justification":"` + NotVerified + `"}`),
	},
}

// SectionByKey returns the definition for key.
func SectionByKey(key string) (SectionDefinition, bool) {
	for _, s := range Sections {
		if s.Key == key {
			return s, true
		}
	}
	return SectionDefinition{}, false
}
