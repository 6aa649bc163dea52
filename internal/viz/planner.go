package viz

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tutormind/tutormind-backend/internal/intent"
)

type PlanKind string

const (
	PlanNone    PlanKind = "none"
	PlanCurated PlanKind = "curated"
	PlanTable   PlanKind = "table"
	PlanGraph   PlanKind = "graph"
	PlanBoth    PlanKind = "both"
)

// Plan is the planner's final visualization decision for one turn. The exact
// numbers/expressions used are carried along so the synthesizer never has to
// re-derive the decision.
type Plan struct {
	Kind PlanKind

	Rule        *Rule
	Numbers     []int
	Expressions []string

	// FullTable is the generic 1..10 table chosen when a table was asked
	// for but no number was found anywhere.
	FullTable bool

	// NeedsDraftNumber defers the single-number decision to Refine: the
	// question asked for a table but carried no number, so the model's
	// draft answer is scanned for one.
	NeedsDraftNumber bool
}

// ReplacesText reports whether the artifact fully replaces the model's
// textual answer (table-shaped plans; the orchestrator uses this to suppress
// duplicate "N×M=K" rows on the live channel).
func (p *Plan) ReplacesText() bool {
	return p != nil && (p.Kind == PlanTable || p.Kind == PlanBoth)
}

func (p *Plan) HasArtifact() bool {
	return p != nil && p.Kind != PlanNone
}

type Planner struct {
	catalog *Catalog
}

func NewPlanner(catalog *Catalog) *Planner {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Planner{catalog: catalog}
}

// Plan resolves the catalog lookup and the intent into one decision.
//
// Precedence (observed product behavior, preserved exactly): a curated match
// wins over a single numeric match, but an explicit multi-number request
// discards the curated match. Flagged for reconsideration, not re-derived.
func (p *Planner) Plan(in intent.Intent) *Plan {
	rule := p.catalog.Match(in.RawText)
	multiNumber := len(in.Numbers) > 1

	// 1. Curated match, unless the multi-number override fires.
	if rule != nil && !multiNumber {
		return &Plan{Kind: PlanCurated, Rule: rule}
	}

	// 7 (checked early so table/graph branches below stay single-kind).
	if in.Kind == intent.KindBoth {
		return &Plan{Kind: PlanBoth, Numbers: in.Numbers, Expressions: in.Expressions}
	}

	// 2. Multi-number table.
	if in.Kind == intent.KindTable && multiNumber {
		return &Plan{Kind: PlanTable, Numbers: in.Numbers}
	}

	// 3. Single explicit number.
	if in.Kind == intent.KindTable && len(in.Numbers) == 1 {
		return &Plan{Kind: PlanTable, Numbers: in.Numbers}
	}

	// 5. Graph with expressions.
	if in.Kind == intent.KindGraph && len(in.Expressions) > 0 {
		return &Plan{Kind: PlanGraph, Expressions: in.Expressions}
	}

	// 3 (deferred) / 4. Table cue with no number anywhere: the number may
	// still show up in the model's draft; otherwise the full 1..10 table.
	if in.TableCue {
		return &Plan{Kind: PlanTable, NeedsDraftNumber: true}
	}

	// 6. Generic graph cue: keyword default, else first raw candidate.
	if in.GraphCue {
		if len(in.RawCandidates) > 0 {
			cand := intent.NormalizeExpression(in.RawCandidates[0])
			if intent.ExpressionAllowed(cand) {
				return &Plan{Kind: PlanGraph, Expressions: []string{cand}}
			}
		}
		return &Plan{Kind: PlanGraph, Expressions: []string{"sin(x)"}}
	}

	// 8. No artifact.
	return &Plan{Kind: PlanNone}
}

var draftNumberRe = regexp.MustCompile(`\d+`)

// Refine finalizes a deferred decision once the model's draft answer exists.
// A first in-range integer in the draft selects a single-number table; no
// number at all selects the full table.
func (p *Planner) Refine(plan *Plan, draftText string) *Plan {
	if plan == nil || !plan.NeedsDraftNumber {
		return plan
	}
	out := *plan
	out.NeedsDraftNumber = false
	for _, m := range draftNumberRe.FindAllString(draftText, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 10 {
			continue
		}
		out.Numbers = []int{n}
		return &out
	}
	out.FullTable = true
	return &out
}

// Spec builds the declarative render request for a finalized plan.
func (p *Planner) Spec(plan *Plan) (*ArtifactSpec, error) {
	if plan == nil || plan.Kind == PlanNone {
		return nil, nil
	}
	if plan.NeedsDraftNumber {
		return nil, fmt.Errorf("plan not refined")
	}
	switch plan.Kind {
	case PlanCurated:
		spec := plan.Rule.Build()
		return &spec, nil
	case PlanTable:
		t := multiplicationTableSpec(plan.Numbers, plan.FullTable)
		return &ArtifactSpec{Kind: SpecTable, Table: t}, nil
	case PlanGraph:
		return &ArtifactSpec{Kind: SpecGraph, Graph: defaultGraphSpec(plan.Expressions)}, nil
	case PlanBoth:
		t := multiplicationTableSpec(plan.Numbers, false)
		return &ArtifactSpec{
			Kind:  SpecBoth,
			Table: t,
			Graph: defaultGraphSpec(plan.Expressions),
		}, nil
	}
	return nil, fmt.Errorf("unknown plan kind %q", plan.Kind)
}

func defaultGraphSpec(exprs []string) *GraphSpec {
	return &GraphSpec{Expressions: exprs, XMin: -6.5, XMax: 6.5}
}

// multiplicationTableSpec renders one column block per requested number;
// the full table covers 1..10.
func multiplicationTableSpec(numbers []int, full bool) *TableSpec {
	if full || len(numbers) == 0 {
		numbers = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	}
	headers := []string{"×"}
	for _, n := range numbers {
		headers = append(headers, strconv.Itoa(n))
	}
	var rows [][]string
	for i := 1; i <= 10; i++ {
		row := []string{strconv.Itoa(i)}
		for _, n := range numbers {
			row = append(row, strconv.Itoa(n*i))
		}
		rows = append(rows, row)
	}
	title := "Multiplication table"
	if len(numbers) == 1 {
		title = fmt.Sprintf("Multiplication table for %d", numbers[0])
	}
	return &TableSpec{Title: title, Headers: headers, Rows: rows}
}
