package fixtures

import (
	"strings"
	"testing"
)

func TestPoliciesShape(t *testing.T) {
	g := NewGenerator(42)
	policies := g.Policies(5)

	if len(policies) != 5 {
		t.Fatalf("got %d policies, want 5", len(policies))
	}
	for _, p := range policies {
		if p.PolicyNumber == "" || p.PolicyHolderName == "" {
			t.Errorf("policy %+v missing identity fields", p)
		}
		if len(p.Coverages) != 3 {
			t.Errorf("policy %s has %d coverages, want 3", p.PolicyNumber, len(p.Coverages))
		}
		if !p.IsActive(g.now) {
			t.Errorf("policy %s should be active now", p.PolicyNumber)
		}
		if len(p.Exclusions) != 1 || p.Exclusions[0].ExclusionType != "cosmetic" {
			t.Errorf("policy %s missing cosmetic exclusion", p.PolicyNumber)
		}
	}
}

func TestClaimsConsistent(t *testing.T) {
	g := NewGenerator(42)
	policies := g.Policies(3)
	claims := g.Claims(10, policies)

	if len(claims) != 10 {
		t.Fatalf("got %d claims, want 10", len(claims))
	}
	for _, c := range claims {
		if len(c.Items) == 0 {
			t.Errorf("claim %s has no items", c.ClaimID)
		}
		if c.ItemTotal() != c.TotalBilledAmount {
			t.Errorf("claim %s: item total %v != claim total %v", c.ClaimID, c.ItemTotal(), c.TotalBilledAmount)
		}
		found := false
		for _, p := range policies {
			if p.PolicyNumber == c.PolicyNumber {
				found = true
			}
		}
		if !found {
			t.Errorf("claim %s references unknown policy %s", c.ClaimID, c.PolicyNumber)
		}
	}
}

func TestSeededGenerationIsDeterministic(t *testing.T) {
	a := NewGenerator(7)
	b := NewGenerator(7)
	// Pin the clock so both generators see identical inputs.
	b.now = a.now

	pa := a.Policies(2)
	pb := b.Policies(2)
	for i := range pa {
		if pa[i].PolicyHolderName != pb[i].PolicyHolderName || pa[i].AnnualDeductible != pb[i].AnnualDeductible {
			t.Errorf("policy %d differs across identically seeded generators", i)
		}
	}
}

func TestEdgeCaseClaims(t *testing.T) {
	g := NewGenerator(1)
	pol := g.Policies(1)[0]
	edge := g.EdgeCaseClaims(pol)

	if len(edge) != 3 {
		t.Fatalf("got %d edge claims, want 3", len(edge))
	}
	if !pol.IsDiagnosisExcluded(edge[0].PrimaryDiagnosis) {
		t.Errorf("edge claim %s should carry an excluded diagnosis", edge[0].ClaimID)
	}
	if edge[1].TotalBilledAmount <= 50000 {
		t.Errorf("edge claim %s should exceed the high-value threshold", edge[1].ClaimID)
	}
	if len(edge[2].Items) != 0 {
		t.Errorf("edge claim %s should have no items", edge[2].ClaimID)
	}
}

func TestMedicalReport(t *testing.T) {
	g := NewGenerator(3)
	policies := g.Policies(1)
	c := g.Claims(1, policies)[0]

	report := g.MedicalReport(c)
	for _, want := range []string{"MEDICAL REPORT", c.ClaimantName, c.PrimaryDiagnosis, c.ProviderNPI} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
