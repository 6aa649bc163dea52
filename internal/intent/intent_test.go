package intent

import (
	"reflect"
	"testing"
)

func TestParseTableRequests(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		kind    Kind
		numbers []int
	}{
		{
			name:    "table of multiplication by 7",
			text:    "Please show me the table of multiplication by 7",
			kind:    KindTable,
			numbers: []int{7},
		},
		{
			name:    "multi number comma list",
			text:    "I need a multiplication table for 3, 5 and 7",
			kind:    KindTable,
			numbers: []int{3, 5, 7},
		},
		{
			name:    "multi number different phrasing",
			text:    "Can you make a table with 3 then 5 then 7?",
			kind:    KindTable,
			numbers: []int{3, 5, 7},
		},
		{
			name:    "russian table request",
			text:    "Покажи таблицу умножения на 6",
			kind:    KindTable,
			numbers: []int{6},
		},
		{
			name:    "out of range numbers ignored",
			text:    "table of multiplication by 25",
			kind:    KindNone,
			numbers: nil,
		},
		{
			name:    "duplicates collapse",
			text:    "table for 4 and 4 and 9",
			kind:    KindTable,
			numbers: []int{4, 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Parse(tt.text)
			if in.Kind != tt.kind {
				t.Fatalf("Kind = %q, want %q", in.Kind, tt.kind)
			}
			if !reflect.DeepEqual(in.Numbers, tt.numbers) {
				t.Fatalf("Numbers = %v, want %v", in.Numbers, tt.numbers)
			}
		})
	}
}

func TestParseGraphRequests(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		exprs []string
	}{
		{"sine keyword", "draw a sine graph please", []string{"sin(x)"}},
		{"parabola keyword", "show me a parabola", []string{"x^2"}},
		{"captured expression", "plot y = x^2 + 1", []string{"x^2+1"}},
		{"two expressions", "plot sin(x) and cos(x)", []string{"sin(x)", "cos(x)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Parse(tt.text)
			if in.Kind != KindGraph {
				t.Fatalf("Kind = %q, want %q", in.Kind, KindGraph)
			}
			if !reflect.DeepEqual(in.Expressions, tt.exprs) {
				t.Fatalf("Expressions = %v, want %v", in.Expressions, tt.exprs)
			}
		})
	}
}

func TestParseBoth(t *testing.T) {
	in := Parse("multiplication table for 4 and a sine graph")
	if in.Kind != KindBoth {
		t.Fatalf("Kind = %q, want %q", in.Kind, KindBoth)
	}
	if !reflect.DeepEqual(in.Numbers, []int{4}) {
		t.Fatalf("Numbers = %v, want [4]", in.Numbers)
	}
	if !reflect.DeepEqual(in.Expressions, []string{"sin(x)"}) {
		t.Fatalf("Expressions = %v, want [sin(x)]", in.Expressions)
	}
}

func TestParseIdempotent(t *testing.T) {
	texts := []string{
		"Please show me the table of multiplication by 7",
		"plot sin(x) and cos(x)",
		"explain photosynthesis",
		"Покажи таблицу умножения на 3 и 9",
	}
	for _, text := range texts {
		a := Parse(text)
		b := Parse(text)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Parse(%q) not idempotent:\n%+v\n%+v", text, a, b)
		}
	}
}

func TestParseSubjectAndExplanation(t *testing.T) {
	in := Parse("Explain the conjugation of the verb to be")
	if in.Subject != "english" {
		t.Fatalf("Subject = %q, want english", in.Subject)
	}
	if !in.NeedsExplanation {
		t.Fatal("NeedsExplanation = false, want true")
	}

	in = Parse("12 plus 30")
	if in.Subject != "math" {
		t.Fatalf("default Subject = %q, want math", in.Subject)
	}
}

func TestNormalizeExpression(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"y = x^2 + 1", "x^2+1"},
		{"X²", "x^2"},
		{"f(x) = sin(x)", "sin(x)"},
		{"  2x ", "2x"},
	}
	for _, tt := range tests {
		if got := NormalizeExpression(tt.in); got != tt.want {
			t.Fatalf("NormalizeExpression(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpressionAllowed(t *testing.T) {
	allowed := []string{"sin(x)", "x^2+1", "2x", "exp(x)/2"}
	for _, s := range allowed {
		if !ExpressionAllowed(s) {
			t.Fatalf("ExpressionAllowed(%q) = false, want true", s)
		}
	}
	denied := []string{"", "hello;drop", "x=£", "..."}
	for _, s := range denied {
		if ExpressionAllowed(s) {
			t.Fatalf("ExpressionAllowed(%q) = true, want false", s)
		}
	}
}
