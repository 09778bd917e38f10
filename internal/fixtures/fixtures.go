// Package fixtures generates synthetic claims, policies, and medical reports
// for local development and demos. Generation is seeded, so the same seed
// always yields the same records.
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

type diagnosis struct {
	Code        string
	Description string
}

type procedure struct {
	Code        string
	Description string
	Price       float64
}

var diagnosisCatalog = []diagnosis{
	{"M54.5", "Low back pain"},
	{"J06.9", "Acute upper respiratory infection"},
	{"E11.9", "Type 2 diabetes mellitus"},
	{"I10", "Essential hypertension"},
	{"M25.511", "Pain in right shoulder"},
	{"K21.9", "Gastro-esophageal reflux disease"},
	{"F41.9", "Anxiety disorder"},
	{"M79.3", "Panniculitis"},
}

var procedureCatalog = []procedure{
	{"99213", "Office visit, established patient, level 3", 150},
	{"99214", "Office visit, established patient, level 4", 200},
	{"99215", "Office visit, established patient, level 5", 250},
	{"73030", "Shoulder X-ray", 120},
	{"80053", "Comprehensive metabolic panel", 85},
	{"85025", "Complete blood count", 45},
	{"93000", "Electrocardiogram", 95},
}

var firstNames = []string{"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Lisa", "William", "Mary"}
var lastNames = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
var providerFirst = []string{"James", "Jennifer", "Michael", "Sarah", "David", "Emily"}
var providerLast = []string{"Anderson", "Thompson", "Wilson", "Moore", "Taylor", "Lee"}

// Generator produces synthetic records from a seeded PRNG.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: time.Now()}
}

// Policies generates count policies, POL-10000 upward, each with outpatient,
// inpatient, and emergency coverages plus a cosmetic-procedure exclusion.
func (g *Generator) Policies(count int) []*policy.Policy {
	policyTypes := []string{"PPO", "HMO", "EPO", "POS"}
	outpatientLimit := 50000.0
	perVisitLimit := 5000.0
	inpatientLimit := 100000.0

	policies := make([]*policy.Policy, 0, count)
	for i := 0; i < count; i++ {
		p := &policy.Policy{
			PolicyNumber:     fmt.Sprintf("POL-%d", 10000+i),
			PolicyHolderName: g.personName(),
			EffectiveDate:    g.now.AddDate(0, 0, -g.intBetween(30, 365)),
			ExpirationDate:   g.now.AddDate(0, 0, g.intBetween(30, 365)),
			AnnualDeductible: g.pickFloat(500, 1000, 1500, 2000, 2500, 3000),
			DeductibleMet:    g.round2(g.rng.Float64() * 1500),
			OutOfPocketMax:   g.pickFloat(5000, 6000, 7000, 8000, 10000),
			OutOfPocketMet:   g.round2(g.rng.Float64() * 3000),
			PolicyType:       policyTypes[g.rng.Intn(len(policyTypes))],
			NetworkType:      "In-Network",
			RequiresReferral: g.rng.Intn(2) == 0,
			EmergencyCoverage: true,
			Coverages: []policy.Coverage{
				{
					Category:              "outpatient",
					AnnualLimit:           &outpatientLimit,
					PerVisitLimit:         &perVisitLimit,
					CopayAmount:           g.pickFloat(20, 30, 40, 50),
					CoinsurancePercentage: g.pickFloat(10, 20, 30),
					DeductibleApplies:     true,
					CoveredProcedures:     []string{"99213", "99214", "99215"},
				},
				{
					Category:              "inpatient",
					AnnualLimit:           &inpatientLimit,
					CoinsurancePercentage: 20,
					DeductibleApplies:     true,
					RequiresPreauth:       true,
				},
				{
					Category:    "emergency",
					CopayAmount: 100,
				},
			},
			Exclusions: []policy.Exclusion{
				{
					ExclusionType: "cosmetic",
					Description:   "Cosmetic procedures not medically necessary",
					ExcludedCodes: []string{"15780", "15781", "15782"},
				},
			},
		}
		policies = append(policies, p)
	}
	return policies
}

// Claims generates count claims over the catalog, each against a random
// generated policy.
func (g *Generator) Claims(count int, policies []*policy.Policy) []*claim.Claim {
	claims := make([]*claim.Claim, 0, count)
	for i := 0; i < count; i++ {
		pol := policies[g.rng.Intn(len(policies))]
		serviceDate := g.now.AddDate(0, 0, -g.intBetween(1, 60))
		diag := diagnosisCatalog[g.rng.Intn(len(diagnosisCatalog))]

		numItems := g.intBetween(1, 3)
		items := make([]claim.Item, 0, numItems)
		var total float64
		for j := 0; j < numItems; j++ {
			proc := procedureCatalog[g.rng.Intn(len(procedureCatalog))]
			units := g.intBetween(1, 2)
			amount := proc.Price * float64(units)
			total += amount
			items = append(items, claim.Item{
				ProcedureCode:        proc.Code,
				ProcedureDescription: proc.Description,
				DiagnosisCode:        diag.Code,
				ServiceDate:          serviceDate,
				ProviderName:         g.providerName(),
				BilledAmount:         amount,
				Units:                units,
			})
		}

		c := &claim.Claim{
			ClaimID:           fmt.Sprintf("CLM-2024-%d", 1000+i),
			PolicyNumber:      pol.PolicyNumber,
			ClaimantName:      pol.PolicyHolderName,
			ClaimantDOB:       g.now.AddDate(0, 0, -g.intBetween(18*365, 70*365)),
			ClaimantID:        fmt.Sprintf("MEM-%d", g.intBetween(10000, 99999)),
			ClaimDate:         g.now,
			ServiceStartDate:  serviceDate,
			ServiceEndDate:    serviceDate,
			PrimaryDiagnosis:  diag.Code,
			Items:             items,
			TotalBilledAmount: total,
			ProviderName:      items[0].ProviderName,
			ProviderNPI:       fmt.Sprintf("%d", 1000000000+g.rng.Intn(9000000000)),
			Status:            claim.StatusPending,
		}
		if g.rng.Intn(3) > 0 {
			facility := []string{"City Medical Center", "Regional Hospital"}[g.rng.Intn(2)]
			c.FacilityName = &facility
		}
		claims = append(claims, c)
	}
	return claims
}

// EdgeCaseClaims returns deterministic claims that exercise the adjudication
// edge paths: an excluded diagnosis, a high-value claim, and one without
// procedure codes.
func (g *Generator) EdgeCaseClaims(pol *policy.Policy) []*claim.Claim {
	serviceDate := g.now.AddDate(0, 0, -7)

	excluded := &claim.Claim{
		ClaimID:          "CLM-EDGE-EXCLUDED",
		PolicyNumber:     pol.PolicyNumber,
		ClaimantName:     pol.PolicyHolderName,
		ClaimantDOB:      g.now.AddDate(-40, 0, 0),
		ClaimantID:       "MEM-90001",
		ClaimDate:        g.now,
		ServiceStartDate: serviceDate,
		ServiceEndDate:   serviceDate,
		PrimaryDiagnosis: "15780",
		Items: []claim.Item{
			{ProcedureCode: "15780", ProcedureDescription: "Dermabrasion", DiagnosisCode: "15780",
				ServiceDate: serviceDate, ProviderName: "Dr. Sarah Wilson", BilledAmount: 2400, Units: 1},
		},
		TotalBilledAmount: 2400,
		ProviderName:      "Dr. Sarah Wilson",
		ProviderNPI:       "1999999991",
		Status:            claim.StatusPending,
	}

	highValue := &claim.Claim{
		ClaimID:          "CLM-EDGE-HIGHVALUE",
		PolicyNumber:     pol.PolicyNumber,
		ClaimantName:     pol.PolicyHolderName,
		ClaimantDOB:      g.now.AddDate(-55, 0, 0),
		ClaimantID:       "MEM-90002",
		ClaimDate:        g.now,
		ServiceStartDate: serviceDate,
		ServiceEndDate:   serviceDate,
		PrimaryDiagnosis: "I10",
		Items: []claim.Item{
			{ProcedureCode: "99215", ProcedureDescription: "Extended inpatient stay", DiagnosisCode: "I10",
				ServiceDate: serviceDate, ProviderName: "Dr. James Anderson", BilledAmount: 85000, Units: 1},
		},
		TotalBilledAmount: 85000,
		ProviderName:      "Dr. James Anderson",
		ProviderNPI:       "1999999992",
		Status:            claim.StatusPending,
	}

	missingCodes := &claim.Claim{
		ClaimID:           "CLM-EDGE-NOCODES",
		PolicyNumber:      pol.PolicyNumber,
		ClaimantName:      pol.PolicyHolderName,
		ClaimantDOB:       g.now.AddDate(-30, 0, 0),
		ClaimantID:        "MEM-90003",
		ClaimDate:         g.now,
		ServiceStartDate:  serviceDate,
		ServiceEndDate:    serviceDate,
		PrimaryDiagnosis:  "J06.9",
		TotalBilledAmount: 300,
		ProviderName:      "Dr. Emily Lee",
		ProviderNPI:       "1999999993",
		Status:            claim.StatusPending,
	}

	return []*claim.Claim{excluded, highValue, missingCodes}
}

// MedicalReport renders a synthetic narrative report for a claim.
func (g *Generator) MedicalReport(c *claim.Claim) string {
	progress := []string{"gradually worsening", "stable", "improving with treatment"}
	assessment := []string{"Condition is stable", "Condition requires continued monitoring", "Patient responding well to treatment"}
	followup := []string{"Follow-up in 2 weeks", "Follow-up as needed", "Return if symptoms worsen"}
	plan := []string{"Prescribed medication", "Ordered diagnostic tests", "Referred to specialist"}

	return fmt.Sprintf(`MEDICAL REPORT

Patient: %s
Date of Service: %s
Provider: %s

CHIEF COMPLAINT:
Patient presents with symptoms related to diagnosis code %s.

HISTORY OF PRESENT ILLNESS:
Patient reports onset of symptoms approximately %d days ago.
Symptoms have been %s.

PHYSICAL EXAMINATION:
Vital signs stable. Examination findings consistent with diagnosis.

ASSESSMENT:
Primary diagnosis: %s
%s.

PLAN:
1. Continue current treatment plan
2. %s
3. %s

MEDICAL NECESSITY:
The services provided were medically necessary for the diagnosis and treatment of the patient's condition.

Provider Signature: %s
NPI: %s
Date: %s
`,
		c.ClaimantName, c.ServiceStartDate.Format("2006-01-02"), c.ProviderName,
		c.PrimaryDiagnosis,
		g.intBetween(1, 14), progress[g.rng.Intn(len(progress))],
		c.PrimaryDiagnosis, assessment[g.rng.Intn(len(assessment))],
		followup[g.rng.Intn(len(followup))], plan[g.rng.Intn(len(plan))],
		c.ProviderName, c.ProviderNPI, c.ServiceStartDate.Format("2006-01-02"))
}

func (g *Generator) personName() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

func (g *Generator) providerName() string {
	return "Dr. " + providerFirst[g.rng.Intn(len(providerFirst))] + " " + providerLast[g.rng.Intn(len(providerLast))]
}

func (g *Generator) intBetween(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func (g *Generator) pickFloat(vals ...float64) float64 {
	return vals[g.rng.Intn(len(vals))]
}

func (g *Generator) round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
