package viz

import (
	"reflect"
	"testing"

	"github.com/tutormind/tutormind-backend/internal/intent"
)

func plannerPlan(t *testing.T, text string) *Plan {
	t.Helper()
	p := NewPlanner(DefaultCatalog())
	return p.Plan(intent.Parse(text))
}

func TestPlanCuratedBeatsSingleNumber(t *testing.T) {
	plan := plannerPlan(t, "Show me the planets table and the multiplication table for 5")
	if plan.Kind != PlanCurated {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanCurated)
	}
	if plan.Rule == nil || plan.Rule.Name != "planets-table" {
		t.Fatalf("Rule = %+v, want planets-table", plan.Rule)
	}
}

func TestPlanMultiNumberOverridesCurated(t *testing.T) {
	plan := plannerPlan(t, "Show me the planets table and the multiplication table for 3 and 5")
	if plan.Kind != PlanTable {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanTable)
	}
	if !reflect.DeepEqual(plan.Numbers, []int{3, 5}) {
		t.Fatalf("Numbers = %v, want [3 5]", plan.Numbers)
	}
}

func TestPlanSingleNumberTable(t *testing.T) {
	plan := plannerPlan(t, "table of multiplication by 7")
	if plan.Kind != PlanTable {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanTable)
	}
	if !reflect.DeepEqual(plan.Numbers, []int{7}) {
		t.Fatalf("Numbers = %v, want [7]", plan.Numbers)
	}
	if !plan.ReplacesText() {
		t.Fatal("table plan should replace the text")
	}
}

func TestPlanGraphWithExpressions(t *testing.T) {
	plan := plannerPlan(t, "plot sin(x) and cos(x)")
	if plan.Kind != PlanGraph {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanGraph)
	}
	if !reflect.DeepEqual(plan.Expressions, []string{"sin(x)", "cos(x)"}) {
		t.Fatalf("Expressions = %v", plan.Expressions)
	}
	if plan.ReplacesText() {
		t.Fatal("graph plan should not replace the text")
	}
}

func TestPlanBoth(t *testing.T) {
	plan := plannerPlan(t, "multiplication table for 4 and a sine graph")
	if plan.Kind != PlanBoth {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanBoth)
	}
	if !reflect.DeepEqual(plan.Numbers, []int{4}) {
		t.Fatalf("Numbers = %v, want [4]", plan.Numbers)
	}
	if !reflect.DeepEqual(plan.Expressions, []string{"sin(x)"}) {
		t.Fatalf("Expressions = %v, want [sin(x)]", plan.Expressions)
	}
}

func TestPlanDeferredNumberAndRefine(t *testing.T) {
	p := NewPlanner(DefaultCatalog())
	plan := p.Plan(intent.Parse("show me the times table please"))
	if plan.Kind != PlanTable || !plan.NeedsDraftNumber {
		t.Fatalf("plan = %+v, want deferred table", plan)
	}

	refined := p.Refine(plan, "Sure! Let's look at the number 7 together.")
	if refined.NeedsDraftNumber {
		t.Fatal("refined plan still deferred")
	}
	if !reflect.DeepEqual(refined.Numbers, []int{7}) {
		t.Fatalf("Numbers = %v, want [7]", refined.Numbers)
	}

	full := p.Refine(plan, "No digits here at all.")
	if !full.FullTable {
		t.Fatal("draft without numbers should select the full table")
	}
}

func TestPlanGenericGraphCueDefaultsToSine(t *testing.T) {
	plan := plannerPlan(t, "нарисуй график")
	if plan.Kind != PlanGraph {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanGraph)
	}
	if !reflect.DeepEqual(plan.Expressions, []string{"sin(x)"}) {
		t.Fatalf("Expressions = %v, want [sin(x)]", plan.Expressions)
	}
}

func TestPlanNone(t *testing.T) {
	plan := plannerPlan(t, "why is the sky blue?")
	if plan.Kind != PlanNone {
		t.Fatalf("Kind = %q, want %q", plan.Kind, PlanNone)
	}
	if plan.HasArtifact() {
		t.Fatal("none plan reports an artifact")
	}
}

func TestSpecMultiNumberTable(t *testing.T) {
	p := NewPlanner(DefaultCatalog())
	plan := &Plan{Kind: PlanTable, Numbers: []int{3, 9}}
	spec, err := p.Spec(plan)
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	if spec.Kind != SpecTable || spec.Table == nil {
		t.Fatalf("spec = %+v", spec)
	}
	if !reflect.DeepEqual(spec.Table.Headers, []string{"×", "3", "9"}) {
		t.Fatalf("Headers = %v", spec.Table.Headers)
	}
	if len(spec.Table.Rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(spec.Table.Rows))
	}
	if !reflect.DeepEqual(spec.Table.Rows[4], []string{"5", "15", "45"}) {
		t.Fatalf("row 5 = %v", spec.Table.Rows[4])
	}
}

func TestSpecRejectsUnrefinedPlan(t *testing.T) {
	p := NewPlanner(DefaultCatalog())
	if _, err := p.Spec(&Plan{Kind: PlanTable, NeedsDraftNumber: true}); err == nil {
		t.Fatal("expected error for unrefined plan")
	}
}
