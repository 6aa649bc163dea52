package intent

import (
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindNone  Kind = "none"
	KindTable Kind = "table"
	KindGraph Kind = "graph"
	KindBoth  Kind = "both"
)

// Intent is the structured interpretation of one user message. It is a pure
// derivation of RawText: the same text always parses to the same Intent.
type Intent struct {
	Kind    Kind
	Subject string

	// Numbers are multiplication-table numbers found in the text, in order
	// of appearance, deduplicated. Populated only when a table cue is
	// present.
	Numbers []int

	// Expressions are normalized plottable expressions. RawCandidates keeps
	// captures that failed the allow-list check, in capture order.
	Expressions   []string
	RawCandidates []string

	// TableCue / GraphCue report that the text asked for a table/graph even
	// when no number or expression could be extracted.
	TableCue bool
	GraphCue bool

	NeedsExplanation bool
	RawText          string
}

var (
	intRe = regexp.MustCompile(`\d+`)

	// \b and \w are ASCII-only in RE2, so the Russian alternatives use plain
	// prefixes and explicit Cyrillic classes.
	tableCueRe = regexp.MustCompile(`(?i)(\btable|times table|multiplication|умножени|таблиц)`)
	graphCueRe = regexp.MustCompile(`(?i)(\bgraph|\bplot|\bchart|\bcurve|график|нарису)`)

	// Fallback capture patterns for a single table number, tried in order.
	tableCaptureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)table\s+of\s+multiplication\s+(?:by|for|of)\s+(\d+)`),
		regexp.MustCompile(`(?i)multiplication\s+table\s+(?:by|for|of)\s+(\d+)`),
		regexp.MustCompile(`(?i)times\s+table\s+(?:by|for|of)?\s*(\d+)`),
		regexp.MustCompile(`(?i)table\s+(?:by|for|of)\s+(\d+)`),
		regexp.MustCompile(`(?i)таблиц[а-яё]*\s+умножения\s+на\s+(\d+)`),
		regexp.MustCompile(`(?i)умножени[а-яё]*\s+на\s+(\d+)`),
	}

	// Graph capture patterns; the capture is split on conjunctions.
	graphCaptureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)graph\s+of\s+([^.?!\n]+)`),
		regexp.MustCompile(`(?i)plot\s+(?:of\s+)?([^.?!\n]+)`),
		regexp.MustCompile(`(?i)draw\s+(?:a\s+|the\s+)?(?:graph\s+(?:of\s+)?)?([^.?!\n]+)`),
		regexp.MustCompile(`(?i)график\s+(?:функции\s+)?([^.?!\n]+)`),
	}

	graphSplitRe = regexp.MustCompile(`(?i)\s*(?:,|;|\band\b|\bи\b)\s*`)

	superscriptReplacer = strings.NewReplacer("²", "^2", "³", "^3")

	explanationRe = regexp.MustCompile(`(?i)(\bexplain|\bwhy\b|how\s+does|how\s+do|\bdescribe|what\s+is|объясни|поясни|почему|расскажи)`)
)

// Canonical function keywords. Keyword recognition runs before free-text
// capture because it is less error-prone.
var graphKeywords = []struct {
	words []string
	expr  string
}{
	{[]string{"sine", "sin wave", "синус"}, "sin(x)"},
	{[]string{"cosine", "косинус"}, "cos(x)"},
	{[]string{"tangent", "тангенс"}, "tan(x)"},
	{[]string{"parabola", "парабол"}, "x^2"},
	{[]string{"exponential", "экспонент"}, "exp(x)"},
	{[]string{"logarithm", "логарифм"}, "log(x)"},
}

var subjectVocab = []struct {
	name  string
	words []string
}{
	{"physics", []string{"physics", "force", "velocity", "gravity", "newton", "энерги", "физик"}},
	{"chemistry", []string{"chemistry", "element", "molecule", "acid", "reaction", "хими"}},
	{"biology", []string{"biology", "cell", "photosynthesis", "organism", "dna", "биологи"}},
	{"history", []string{"history", "war", "revolution", "century", "empire", "истори"}},
	{"geography", []string{"geography", "river", "mountain", "continent", "country", "географ"}},
	{"english", []string{"english", "verb", "grammar", "conjugat", "tense", "английск"}},
	{"music", []string{"music", "note", "chord", "melody", "музык"}},
	{"informatics", []string{"informatics", "computer", "binary", "ascii", "program", "информатик"}},
	{"art", []string{"art", "painting", "drawing", "artist", "искусств"}},
	{"math", []string{"math", "equation", "number", "fraction", "geometry", "математик"}},
}

// Parse derives an Intent from raw text. Deterministic, side-effect free.
func Parse(text string) Intent {
	in := Intent{
		Kind:    KindNone,
		Subject: "math",
		RawText: text,
	}
	lower := strings.ToLower(text)

	in.TableCue = tableCueRe.MatchString(text)
	in.GraphCue = graphCueRe.MatchString(text)
	in.NeedsExplanation = explanationRe.MatchString(text)

	for _, bucket := range subjectVocab {
		hit := false
		for _, w := range bucket.words {
			if strings.Contains(lower, w) {
				hit = true
				break
			}
		}
		if hit {
			in.Subject = bucket.name
			break
		}
	}

	in.Numbers = extractTableNumbers(text, in.TableCue)
	in.Expressions, in.RawCandidates = extractExpressions(text, lower)

	switch {
	case len(in.Numbers) > 0 && len(in.Expressions) > 0:
		in.Kind = KindBoth
	case len(in.Numbers) > 0:
		in.Kind = KindTable
	case len(in.Expressions) > 0:
		in.Kind = KindGraph
	}
	return in
}

// extractTableNumbers takes every in-range integer anywhere in the text when
// a table cue is present ("table for 3, 5 and 7"), and only falls back to
// the first capture-pattern match otherwise.
func extractTableNumbers(text string, cue bool) []int {
	if cue {
		var out []int
		seen := map[int]bool{}
		for _, m := range intRe.FindAllString(text, -1) {
			n, err := strconv.Atoi(m)
			if err != nil || n < 1 || n > 10 {
				continue
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
		if len(out) > 0 {
			return out
		}
	}
	for _, re := range tableCaptureRes {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 10 {
			continue
		}
		return []int{n}
	}
	return nil
}

func extractExpressions(text, lower string) (exprs []string, rawCandidates []string) {
	seen := map[string]bool{}
	for _, kw := range graphKeywords {
		for _, w := range kw.words {
			if strings.Contains(lower, w) {
				if !seen[kw.expr] {
					seen[kw.expr] = true
					exprs = append(exprs, kw.expr)
				}
				break
			}
		}
	}
	if len(exprs) > 0 {
		return exprs, nil
	}

	for _, re := range graphCaptureRes {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		for _, part := range graphSplitRe.Split(m[1], -1) {
			cand := NormalizeExpression(part)
			if cand == "" {
				continue
			}
			if ExpressionAllowed(cand) {
				if !seen[cand] {
					seen[cand] = true
					exprs = append(exprs, cand)
				}
			} else {
				rawCandidates = append(rawCandidates, strings.TrimSpace(part))
			}
		}
		if len(exprs) > 0 || len(rawCandidates) > 0 {
			break
		}
	}
	return exprs, rawCandidates
}

// NormalizeExpression lowercases, strips spaces and a leading "y=", and
// rewrites superscript notation to caret form.
func NormalizeExpression(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = superscriptReplacer.Replace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "y=")
	s = strings.TrimPrefix(s, "f(x)=")
	return s
}

var allowedFnRe = regexp.MustCompile(`sin|cos|tan|sqrt|exp|log|abs`)

// ExpressionAllowed reports whether a normalized candidate uses only the
// allow-listed character set (after removing known function names).
func ExpressionAllowed(s string) bool {
	if s == "" {
		return false
	}
	rest := allowedFnRe.ReplaceAllString(s, "")
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
		case r == 'x' || r == '+' || r == '-' || r == '*' || r == '/' || r == '^' ||
			r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return strings.ContainsAny(s, "x0123456789")
}
