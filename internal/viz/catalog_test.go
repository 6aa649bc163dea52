package viz

import "testing"

func TestDefaultCatalogSize(t *testing.T) {
	c := DefaultCatalog()
	if got := len(c.Rules()); got != 35 {
		t.Fatalf("rule count = %d, want 35", got)
	}
}

func TestCatalogMatchFirstWins(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		text string
		want string
	}{
		{"conjugation of the verb to be", "verb-to-be"},
		{"conjugation of to have please", "verb-to-have"},
		{"list of irregular verbs", "irregular-verbs"},
		{"tell me about the element hydrogen", "element-hydrogen"},
		{"what is the speed of light in water", "speed-of-light"},
		{"show me the multiplication square", "multiplication-square"},
		{"planets of the solar system", "planets-table"},
		{"roman numerals table", "roman-numerals"},
		{"draw the unit circle", "unit-circle"},
	}
	for _, tt := range tests {
		rule := c.Match(tt.text)
		if rule == nil {
			t.Fatalf("Match(%q) = nil, want %q", tt.text, tt.want)
		}
		if rule.Name != tt.want {
			t.Fatalf("Match(%q) = %q, want %q", tt.text, rule.Name, tt.want)
		}
	}
}

func TestCatalogMatchMiss(t *testing.T) {
	c := DefaultCatalog()
	for _, text := range []string{"what is 2 plus 2", "tell me a story", ""} {
		if rule := c.Match(text); rule != nil {
			t.Fatalf("Match(%q) = %q, want nil", text, rule.Name)
		}
	}
}

func TestCatalogRulesBuildValidSpecs(t *testing.T) {
	for _, rule := range DefaultCatalog().Rules() {
		spec := rule.Build()
		switch spec.Kind {
		case SpecTable:
			if spec.Table == nil || len(spec.Table.Rows) == 0 {
				t.Fatalf("rule %q built an empty table spec", rule.Name)
			}
		case SpecGraph:
			if spec.Graph == nil || len(spec.Graph.Expressions) == 0 {
				t.Fatalf("rule %q built an empty graph spec", rule.Name)
			}
		default:
			t.Fatalf("rule %q built unexpected kind %q", rule.Name, spec.Kind)
		}
	}
}
