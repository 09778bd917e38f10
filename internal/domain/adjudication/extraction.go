package adjudication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/platform/docparse"
	"github.com/claims/claims/internal/platform/llm"
)

const extractionSystemPrompt = `You are an expert medical claim data extraction agent. Your role is to:
1. Extract all relevant information from claim forms and medical reports
2. Identify and extract diagnosis codes (ICD-10), procedure codes (CPT), and other medical codes
3. Parse dates, amounts, and provider information accurately
4. Structure the extracted data in a standardized JSON format
5. Flag any missing or ambiguous information

Be precise and thorough. If information is unclear or missing, note it explicitly.`

// requiredFields are the fields whose absence gets reported to the caller.
var requiredFields = []string{
	"claim_id", "policy_number", "claimant_name", "claimant_dob",
	"primary_diagnosis", "total_billed_amount", "provider_name",
}

// importantFieldCount is the denominator of the completeness confidence.
const importantFieldCount = 15

// ExtractionResult is the extraction stage's output: the structured claim,
// the required fields it could not fill, and a completeness score.
type ExtractionResult struct {
	Claim         *claim.Claim `json:"claim"`
	MissingFields []string     `json:"missing_fields,omitempty"`
	Confidence    float64      `json:"confidence"`
}

// Extractor turns raw claim documents into structured claims. JSON documents
// are mapped field by field; free text is delegated to the text-generation
// provider with a minimal placeholder record on failure.
type Extractor struct {
	provider llm.Provider
	logger   zerolog.Logger
	now      func() time.Time
}

func NewExtractor(provider llm.Provider, logger zerolog.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		logger:   logger.With().Str("component", "extractor").Logger(),
		now:      time.Now,
	}
}

// Extract parses a claim document, JSON or free text, into a structured
// claim. The optional medical report is attached to the result.
func (e *Extractor) Extract(ctx context.Context, document, medicalReport string) (*ExtractionResult, error) {
	trimmed := strings.TrimSpace(document)
	if trimmed == "" {
		return nil, fmt.Errorf("empty claim document")
	}

	var record map[string]interface{}
	if strings.HasPrefix(trimmed, "{") {
		parsed, err := docparse.ParseJSONString(trimmed)
		if err != nil {
			record = e.extractUnstructured(ctx, trimmed, medicalReport)
		} else {
			record = parsed
		}
	} else if embedded, ok := docparse.ExtractJSON(trimmed); ok {
		// Cover letters and narrative submissions sometimes embed the claim
		// record as a JSON object; salvage it before involving the provider.
		record = embedded
	} else {
		record = e.extractUnstructured(ctx, trimmed, medicalReport)
	}

	return e.FromRecord(record, medicalReport), nil
}

// FromRecord maps an already-structured record into a claim, honoring both
// snake_case and the camelCase aliases used by upstream submitters.
func (e *Extractor) FromRecord(record map[string]interface{}, medicalReport string) *ExtractionResult {
	cl := &claim.Claim{
		ClaimID:          getString(record, "claim_id", "claimId"),
		PolicyNumber:     getString(record, "policy_number", "policyNumber"),
		ClaimantName:     getString(record, "claimant_name", "patientName"),
		ClaimantDOB:      getDate(record, "claimant_dob", "dateOfBirth"),
		ClaimantID:       getString(record, "claimant_id", "memberId"),
		ClaimDate:        getDate(record, "claim_date"),
		ServiceStartDate: getDate(record, "service_start_date", "serviceDate"),
		ServiceEndDate:   getDate(record, "service_end_date", "serviceDate"),
		PrimaryDiagnosis: getString(record, "primary_diagnosis", "diagnosisCode"),
		TotalBilledAmount: getFloat(record, "total_billed_amount", "totalAmount"),
		ProviderName:     getString(record, "provider_name", "providerName"),
		ProviderNPI:      getString(record, "provider_npi", "npi"),
		Status:           claim.StatusPending,
	}

	if cl.ClaimID == "" {
		cl.ClaimID = "CLM-" + e.now().Format("20060102150405")
	}
	if cl.ClaimDate.IsZero() {
		cl.ClaimDate = e.now()
	}

	if v := getString(record, "facility_name"); v != "" {
		cl.FacilityName = &v
	}
	if medicalReport != "" {
		cl.MedicalReport = &medicalReport
	}

	if raw, ok := record["secondary_diagnoses"].([]interface{}); ok {
		for _, d := range raw {
			if s, ok := d.(string); ok && s != "" {
				cl.SecondaryDiagnoses = append(cl.SecondaryDiagnoses, s)
			}
		}
	}

	items, _ := record["claim_items"].([]interface{})
	if items == nil {
		items, _ = record["services"].([]interface{})
	}
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		ci := claim.Item{
			ProcedureCode:        getString(item, "procedure_code", "cptCode"),
			ProcedureDescription: getString(item, "procedure_description", "description"),
			DiagnosisCode:        getString(item, "diagnosis_code"),
			ServiceDate:          getDate(item, "service_date"),
			ProviderName:         getString(item, "provider_name"),
			BilledAmount:         getFloat(item, "billed_amount", "amount"),
			Units:                getInt(item, "units"),
		}
		if ci.DiagnosisCode == "" {
			ci.DiagnosisCode = cl.PrimaryDiagnosis
		}
		if ci.ServiceDate.IsZero() {
			ci.ServiceDate = cl.ServiceStartDate
		}
		if ci.ProviderName == "" {
			ci.ProviderName = cl.ProviderName
		}
		if ci.Units == 0 {
			ci.Units = 1
		}
		cl.Items = append(cl.Items, ci)
	}

	return &ExtractionResult{
		Claim:         cl,
		MissingFields: missingFields(cl),
		Confidence:    confidence(cl),
	}
}

func (e *Extractor) extractUnstructured(ctx context.Context, text, medicalReport string) map[string]interface{} {
	if e.provider == nil {
		return e.placeholderRecord(text)
	}

	prompt := fmt.Sprintf(`Extract all relevant information from the following insurance claim document and medical report.

CLAIM DOCUMENT:
%s

MEDICAL REPORT:
%s

Extract and structure the following information in JSON format:
- claim_id (generate if not present using format CLM-YYYYMMDDHHMMSS)
- policy_number
- claimant_name
- claimant_dob (format: YYYY-MM-DD)
- claimant_id
- claim_date (format: YYYY-MM-DD)
- service_start_date (format: YYYY-MM-DD)
- service_end_date (format: YYYY-MM-DD)
- primary_diagnosis (ICD-10 code)
- secondary_diagnoses (array of ICD-10 codes)
- total_billed_amount (number)
- provider_name
- provider_npi
- facility_name (if mentioned)
- claim_items (array of objects with: procedure_code, procedure_description, diagnosis_code, service_date, provider_name, billed_amount, units)

If any information is missing or unclear, use null for that field.`, text, medicalReport)

	record, err := e.provider.GenerateStructured(ctx, prompt, extractionSystemPrompt)
	if err != nil {
		e.logger.Warn().Err(err).Msg("structured extraction failed, using placeholder")
		return e.placeholderRecord(text)
	}
	return record
}

func (e *Extractor) placeholderRecord(text string) map[string]interface{} {
	if len(text) > 500 {
		text = text[:500]
	}
	return map[string]interface{}{
		"claim_id": "CLM-" + e.now().Format("20060102150405"),
		"metadata": map[string]interface{}{
			"error":    "extraction failed",
			"raw_text": text,
		},
	}
}

func missingFields(cl *claim.Claim) []string {
	present := map[string]bool{
		"claim_id":            cl.ClaimID != "",
		"policy_number":       cl.PolicyNumber != "",
		"claimant_name":       cl.ClaimantName != "",
		"claimant_dob":        !cl.ClaimantDOB.IsZero(),
		"primary_diagnosis":   cl.PrimaryDiagnosis != "",
		"total_billed_amount": cl.TotalBilledAmount > 0,
		"provider_name":       cl.ProviderName != "",
	}
	var missing []string
	for _, f := range requiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

func confidence(cl *claim.Claim) float64 {
	filled := 0
	for _, ok := range []bool{
		cl.ClaimID != "",
		cl.PolicyNumber != "",
		cl.ClaimantName != "",
		!cl.ClaimantDOB.IsZero(),
		cl.ClaimantID != "",
		!cl.ClaimDate.IsZero(),
		!cl.ServiceStartDate.IsZero(),
		!cl.ServiceEndDate.IsZero(),
		cl.PrimaryDiagnosis != "",
		len(cl.SecondaryDiagnoses) > 0,
		cl.TotalBilledAmount > 0,
		cl.ProviderName != "",
		cl.ProviderNPI != "",
		cl.FacilityName != nil,
		len(cl.Items) > 0,
	} {
		if ok {
			filled++
		}
	}
	return round2(float64(filled) / importantFieldCount)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func getString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func getFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f
			}
		}
	}
	return 0
}

func getInt(m map[string]interface{}, keys ...string) int {
	return int(getFloat(m, keys...))
}

func getDate(m map[string]interface{}, keys ...string) time.Time {
	s := getString(m, keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
