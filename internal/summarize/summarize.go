// Package summarize produces the structured consultation summary for a
// conversation: an LLM call when one is configured, with a deterministic
// keyword-based fallback when the call fails or yields nothing usable.
package summarize

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

// Disclaimer is attached to every summary regardless of how it was produced.
const Disclaimer = "This summary was generated automatically and is not a substitute for " +
	"professional medical advice, diagnosis, or treatment. Verify all details against " +
	"the full conversation record."

// Section labels the generator asks for and the parser recognizes.
var sectionLabels = []string{"Symptoms:", "Diagnosis:", "Medications:", "Follow-up:"}

var sectionPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(sectionLabels))
	for _, label := range sectionLabels {
		patterns[label] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label))
	}
	return patterns
}()

// Sections holds the four semantic fields of a summary.
type Sections struct {
	Symptoms    string
	Diagnosis   string
	Medications string
	FollowUp    string
}

// Result is a generated summary before persistence.
type Result struct {
	Sections
	Content     string
	AIGenerated bool
	Method      string // "llm" or "rule-based"
	Model       string
}

// Generator produces summaries. A nil LLM client means every summary takes
// the rule-based path.
type Generator struct {
	llm *LLMClient
}

// NewGenerator creates a summary generator.
func NewGenerator(llm *LLMClient) *Generator {
	return &Generator{llm: llm}
}

// Transcript renders messages as "role: originalText" lines, oldest first.
func Transcript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.SenderRole, m.OriginalText))
	}
	return strings.Join(lines, "\n")
}

// Generate produces a summary from the conversation's full message history.
// The caller is responsible for the non-empty-history precondition.
func (g *Generator) Generate(ctx context.Context, messages []models.Message) Result {
	transcript := Transcript(messages)

	if g.llm != nil {
		if result, ok := g.generateWithLLM(ctx, transcript); ok {
			return result
		}
	}

	sections := RuleBasedExtract(transcript)
	return Result{
		Sections:    sections,
		Content:     composeContent(sections),
		AIGenerated: false,
		Method:      "rule-based",
	}
}

func (g *Generator) generateWithLLM(ctx context.Context, transcript string) (Result, bool) {
	prompt := fmt.Sprintf(
		"Summarize the following doctor-patient conversation as a medical consultation "+
			"summary with exactly four labeled sections: Symptoms:, Diagnosis:, Medications:, "+
			"Follow-up:. Be concise and only use information from the conversation.\n\n%s",
		transcript,
	)

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Summary LLM call failed, falling back to rule-based extraction: %v", err)
		return Result{}, false
	}

	sections := ParseSections(text)
	// A response the parser cannot anchor at least symptoms or diagnosis in
	// is treated as unusable output.
	if sections.Symptoms == "" && sections.Diagnosis == "" {
		log.Printf("Summary LLM response had no recognizable sections, falling back to rule-based extraction")
		return Result{}, false
	}

	fillDefaults(&sections)
	return Result{
		Sections:    sections,
		Content:     text,
		AIGenerated: true,
		Method:      "llm",
		Model:       g.llm.Model,
	}, true
}

// ParseSections locates the recognized section labels in generated text
// (case-insensitively) and takes the text between each label and the next
// recognized label, or end of text, as that section's value. Matching runs on
// the original text so anchor offsets stay valid for characters whose case
// mapping changes byte length.
func ParseSections(text string) Sections {
	type anchor struct {
		label string
		start int // start of the value, after the label
		pos   int // position of the label itself
	}

	var anchors []anchor
	for _, label := range sectionLabels {
		loc := sectionPatterns[label].FindStringIndex(text)
		if loc == nil {
			continue
		}
		anchors = append(anchors, anchor{label: label, pos: loc[0], start: loc[1]})
	}

	var sections Sections
	for _, a := range anchors {
		end := len(text)
		for _, other := range anchors {
			if other.pos > a.pos && other.pos < end {
				end = other.pos
			}
		}
		value := strings.TrimSpace(text[a.start:end])
		switch a.label {
		case "Symptoms:":
			sections.Symptoms = value
		case "Diagnosis:":
			sections.Diagnosis = value
		case "Medications:":
			sections.Medications = value
		case "Follow-up:":
			sections.FollowUp = value
		}
	}
	return sections
}

func fillDefaults(s *Sections) {
	if s.Symptoms == "" {
		s.Symptoms = DefaultSymptoms
	}
	if s.Diagnosis == "" {
		s.Diagnosis = DefaultDiagnosis
	}
	if s.Medications == "" {
		s.Medications = DefaultMedications
	}
	if s.FollowUp == "" {
		s.FollowUp = DefaultFollowUp
	}
}

func composeContent(s Sections) string {
	return fmt.Sprintf(
		"Consultation Summary\n\nSymptoms: %s\nDiagnosis: %s\nMedications: %s\nFollow-up: %s",
		s.Symptoms, s.Diagnosis, s.Medications, s.FollowUp,
	)
}
