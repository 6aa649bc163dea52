package services

import (
	"strings"
	"testing"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/viz"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestSynthesizeSingleNumberCaption(t *testing.T) {
	s := NewSynthesizer(testLogger(t))
	plan := &viz.Plan{Kind: viz.PlanTable, Numbers: []int{4}}

	res := s.Synthesize("4×1=4\n4×2=8\nlots of model text", plan)
	if !strings.Contains(res.FinalText, "4") {
		t.Fatalf("caption %q does not mention the number", res.FinalText)
	}
	if strings.Contains(res.FinalText, "4×") {
		t.Fatalf("caption %q contains a literal row", res.FinalText)
	}
}

func TestSynthesizeMultiNumberCaption(t *testing.T) {
	s := NewSynthesizer(testLogger(t))
	plan := &viz.Plan{Kind: viz.PlanTable, Numbers: []int{3, 9}}

	res := s.Synthesize("ignored model text", plan)
	for _, want := range []string{"3", "9", "combined"} {
		if !strings.Contains(res.FinalText, want) {
			t.Fatalf("caption %q missing %q", res.FinalText, want)
		}
	}
}

func TestSynthesizeBothCaptionSineWave(t *testing.T) {
	s := NewSynthesizer(testLogger(t))
	plan := &viz.Plan{Kind: viz.PlanBoth, Numbers: []int{4}, Expressions: []string{"sin(x)"}}

	res := s.Synthesize("whatever", plan)
	if !strings.Contains(res.FinalText, "sine wave") {
		t.Fatalf("caption %q should read as a sine wave", res.FinalText)
	}
	if strings.Contains(res.FinalText, "sin(x)") {
		t.Fatalf("caption %q should not name the bare function", res.FinalText)
	}
}

func TestSynthesizeGraphLeadInTwoSentences(t *testing.T) {
	s := NewSynthesizer(testLogger(t))
	plan := &viz.Plan{Kind: viz.PlanGraph, Expressions: []string{"sin(x)"}}

	raw := "Ok. The sine function oscillates between minus one and one forever. " +
		"Its period is two pi, which you can see on the horizontal axis. " +
		"One more sentence that should be cut off by the limit entirely."
	res := s.Synthesize(raw, plan)

	if strings.Contains(res.FinalText, "cut off") {
		t.Fatalf("lead-in kept a third sentence: %q", res.FinalText)
	}
	if !strings.Contains(res.FinalText, "oscillates") || !strings.Contains(res.FinalText, "period") {
		t.Fatalf("lead-in lost substantial sentences: %q", res.FinalText)
	}
	if strings.Contains(res.FinalText, "Ok.") {
		t.Fatalf("short fragment should not count as a sentence: %q", res.FinalText)
	}
}

func TestSynthesizeStripsAutoGeneratedClaims(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	raw := "Here is your answer about fractions and decimals in detail. " +
		"This image was automatically generated for you. " +
		"Картинка была создана автоматически. " +
		"Remember to practice every day."
	res := s.Synthesize(raw, nil)

	if strings.Contains(res.FinalText, "generated") || strings.Contains(res.FinalText, "создана") {
		t.Fatalf("auto-generation claim survived: %q", res.FinalText)
	}
	if !strings.Contains(res.FinalText, "fractions") || !strings.Contains(res.FinalText, "practice") {
		t.Fatalf("normal sentences were lost: %q", res.FinalText)
	}
}

func TestSynthesizeCleanupDedupesParagraphs(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	raw := "The water cycle moves water around the planet.\n\n" +
		"the water cycle moves water around the planet.\n\n" +
		"Evaporation starts the cycle."
	res := s.Synthesize(raw, nil)

	if got := strings.Count(strings.ToLower(res.FinalText), "the water cycle moves"); got != 1 {
		t.Fatalf("duplicate paragraph kept %d times: %q", got, res.FinalText)
	}
	if !strings.Contains(res.FinalText, "Evaporation") {
		t.Fatalf("distinct paragraph lost: %q", res.FinalText)
	}
}

func TestSynthesizeCleanupMergesDigitLines(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	raw := "The answer is:\n1\n2\n8\nwhich is two to the seventh."
	res := s.Synthesize(raw, nil)

	if !strings.Contains(res.FinalText, "128") {
		t.Fatalf("digit lines not merged: %q", res.FinalText)
	}
}

func TestSynthesizeCleanupStripsMarkdown(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	res := s.Synthesize("## Heading\n**bold** and `code` and __underlined__", nil)
	for _, banned := range []string{"##", "**", "`", "__"} {
		if strings.Contains(res.FinalText, banned) {
			t.Fatalf("markdown remnant %q survived: %q", banned, res.FinalText)
		}
	}
	for _, want := range []string{"bold", "code", "underlined"} {
		if !strings.Contains(res.FinalText, want) {
			t.Fatalf("content %q lost: %q", want, res.FinalText)
		}
	}
}

func TestSynthesizeInsertsParagraphBreaks(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	sentence := "This is a reasonably long sentence about photosynthesis in plants. "
	raw := strings.TrimSpace(strings.Repeat(sentence, 15))
	res := s.Synthesize(raw, nil)

	if !strings.Contains(res.FinalText, "\n\n") {
		t.Fatalf("no paragraph break inserted into %d-rune text", len([]rune(res.FinalText)))
	}
}

func TestSynthesizeBounds(t *testing.T) {
	s := NewSynthesizer(testLogger(t))

	raw := strings.Repeat("a", 20000)
	res := s.Synthesize(raw, nil)
	if n := len([]rune(res.FinalText)); n > maxFinalTextRunes {
		t.Fatalf("final text %d runes, cap %d", n, maxFinalTextRunes)
	}
	if n := len([]rune(res.FullText)); n > maxFullTextRunes {
		t.Fatalf("full text %d runes, cap %d", n, maxFullTextRunes)
	}
}
