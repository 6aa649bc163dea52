package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/viz"
)

const (
	maxFinalTextRunes = 4096
	maxFullTextRunes  = 16384

	// Sentences shorter than this do not count toward the two-sentence
	// truncation, so stray fragments cannot inflate the count.
	minSentenceRunes = 25

	// A response longer than this with no paragraph break at all gets
	// breaks inserted at sentence boundaries.
	paragraphBreakThreshold = 700
)

// SynthesisResult carries the delivery text and the looser persistence text.
type SynthesisResult struct {
	FinalText string
	FullText  string
}

// Synthesizer turns the accumulated model text plus the visualization plan
// into the delivered caption or cleaned answer. Deterministic.
type Synthesizer interface {
	Synthesize(raw string, plan *viz.Plan) SynthesisResult
}

type synthesizer struct {
	log *logger.Logger
}

func NewSynthesizer(log *logger.Logger) Synthesizer {
	return &synthesizer{log: log.With("service", "Synthesizer")}
}

func (s *synthesizer) Synthesize(raw string, plan *viz.Plan) SynthesisResult {
	full := strings.TrimSpace(raw)

	var final string
	switch {
	case plan.ReplacesText():
		final = captionFor(plan)
	case plan.HasArtifact():
		final = artifactLeadIn(full)
	default:
		final = cleanupText(full)
	}

	final = stripAutoGeneratedClaims(final)
	final = strings.TrimSpace(final)

	return SynthesisResult{
		FinalText: truncateRunes(final, maxFinalTextRunes),
		FullText:  truncateRunes(full, maxFullTextRunes),
	}
}

// captionFor builds the deterministic caption for table-shaped plans, where
// the artifact fully replaces the model's text.
func captionFor(plan *viz.Plan) string {
	var table string
	switch {
	case plan.FullTable || len(plan.Numbers) == 0:
		table = "Here is the full multiplication table from 1 to 10."
	case len(plan.Numbers) == 1:
		n := plan.Numbers[0]
		table = fmt.Sprintf("Here is the multiplication table for %d. For example, %d × 6 = %d.", n, n, n*6)
	default:
		table = fmt.Sprintf("Here is the combined multiplication table for %s.", joinNumbers(plan.Numbers))
	}

	if plan.Kind != viz.PlanBoth {
		return table
	}
	return table + " " + graphCaption(plan.Expressions)
}

// graphCaption names what the plotted curve shows; sine reads as a wave
// rather than a bare function name.
func graphCaption(exprs []string) string {
	for _, e := range exprs {
		if strings.Contains(strings.ToLower(e), "sin") {
			return "The graph below shows a sine wave."
		}
	}
	if len(exprs) == 1 {
		return fmt.Sprintf("The graph below shows %s.", exprs[0])
	}
	return fmt.Sprintf("The graph below shows %s.", strings.Join(exprs, " and "))
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

var mulRowRe = regexp.MustCompile(`\d+\s*[×x*]\s*\d+\s*=\s*\d+[.,;]?`)

// artifactLeadIn keeps a short lead-in next to a curated or graph artifact:
// multiplication rows go (the image already shows them), whitespace collapses,
// and only the first two substantial sentences survive.
func artifactLeadIn(text string) string {
	text = mulRowRe.ReplaceAllString(text, "")
	text = collapseWhitespace(text)

	sentences := splitSentences(text)
	kept := make([]string, 0, 2)
	for _, sent := range sentences {
		if len([]rune(strings.TrimSpace(sent))) < minSentenceRunes {
			continue
		}
		kept = append(kept, strings.TrimSpace(sent))
		if len(kept) == 2 {
			break
		}
	}
	return strings.Join(kept, " ")
}

// Paraphrases, in both supported languages, of "this image was generated".
// Any sentence matching one of these is dropped wherever it appears.
var autoGeneratedRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(this|the)\s+(image|picture|chart|table|graph)\s+(was|is|has been)\s+(automatically\s+)?(auto[- ]?)?(generated|created|drawn|rendered)`),
	regexp.MustCompile(`(?i)\bautomatically\s+generated\s+(image|picture|chart|table|graph)`),
	regexp.MustCompile(`(?i)\bI\s+(have\s+)?(generated|created|drawn|rendered)\s+(an?|the|this)\s+(image|picture|chart|table|graph)`),
	regexp.MustCompile(`(?i)(изображение|картинка|график|таблица)\s+(был[ао]?\s+)?(автоматически\s+)?(сгенерирован|создан|нарисован)`),
	regexp.MustCompile(`(?i)\b(я\s+)?(сгенерировал|создал|нарисовал)[а-я]*\s+(изображение|картинку|график|таблицу)`),
}

func stripAutoGeneratedClaims(text string) string {
	matched := false
	for _, re := range autoGeneratedRes {
		if re.MatchString(text) {
			matched = true
			break
		}
	}
	if !matched {
		return text
	}

	paragraphs := strings.Split(text, "\n\n")
	for i, p := range paragraphs {
		var kept []string
		for _, sent := range splitSentences(p) {
			drop := false
			for _, re := range autoGeneratedRes {
				if re.MatchString(sent) {
					drop = true
					break
				}
			}
			if !drop {
				kept = append(kept, sent)
			}
		}
		paragraphs[i] = strings.Join(kept, " ")
	}
	var out []string
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

// splitSentences cuts on ./!/? followed by whitespace, keeping the
// terminator with its sentence. Newlines inside a sentence are preserved.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow runs like "?!" or "...".
		j := i
		for j+1 < len(runes) && (runes[j+1] == '.' || runes[j+1] == '!' || runes[j+1] == '?') {
			j++
		}
		if j+1 < len(runes) && runes[j+1] != ' ' && runes[j+1] != '\n' && runes[j+1] != '\t' {
			i = j
			continue
		}
		sent := strings.TrimSpace(string(runes[start : j+1]))
		if sent != "" {
			out = append(out, sent)
		}
		start = j + 1
		i = j
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

var (
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldRe        = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	underscoreRe  = regexp.MustCompile(`__([^_]*)__`)
	backtickRe    = regexp.MustCompile("`([^`]*)`")
	spacedStarRe  = regexp.MustCompile(`\*\s+([^*\n]+?)\s+\*`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]{2,}`)
	digitOnlyLine = regexp.MustCompile(`^\s*\d\s*$`)
	punctPrefixRe = regexp.MustCompile(`^[\s\p{P}]+`)
	tripleBreakRe = regexp.MustCompile(`\n{3,}`)
)

// cleanupText is the no-artifact path: markdown remnants out, duplicate
// paragraphs out, digit-per-line runs merged, long unbroken text split into
// paragraphs.
func cleanupText(text string) string {
	text = headingRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "$1")
	text = underscoreRe.ReplaceAllString(text, "$1")
	text = backtickRe.ReplaceAllString(text, "$1")
	text = spacedStarRe.ReplaceAllString(text, "*$1*")

	text = mergeDigitLines(text)
	text = dedupeParagraphs(text)

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = tripleBreakRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if len([]rune(text)) > paragraphBreakThreshold && !strings.Contains(text, "\n\n") {
		text = insertParagraphBreaks(text)
	}
	return text
}

// mergeDigitLines collapses a run of single-digit-only lines into one number
// line. An upstream quirk sometimes emits "1\n2\n8\n" for 128.
func mergeDigitLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	i := 0
	for i < len(lines) {
		if !digitOnlyLine.MatchString(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		var digits strings.Builder
		for j < len(lines) && digitOnlyLine.MatchString(lines[j]) {
			digits.WriteString(strings.TrimSpace(lines[j]))
			j++
		}
		if j-i >= 2 {
			out = append(out, digits.String())
		} else {
			out = append(out, lines[i])
		}
		i = j
	}
	return strings.Join(out, "\n")
}

func normalizeParagraph(p string) string {
	p = punctPrefixRe.ReplaceAllString(p, "")
	p = strings.ToLower(p)
	return collapseWhitespace(p)
}

func dedupeParagraphs(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	seen := make(map[string]bool, len(paragraphs))
	var out []string
	for _, p := range paragraphs {
		key := normalizeParagraph(p)
		if key == "" {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(p))
	}
	return strings.Join(out, "\n\n")
}

func insertParagraphBreaks(text string) string {
	sentences := splitSentences(text)
	var (
		out    strings.Builder
		runLen int
	)
	for i, sent := range sentences {
		if i > 0 {
			if runLen >= paragraphBreakThreshold/2 {
				out.WriteString("\n\n")
				runLen = 0
			} else {
				out.WriteString(" ")
			}
		}
		out.WriteString(sent)
		runLen += len([]rune(sent))
	}
	return out.String()
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
