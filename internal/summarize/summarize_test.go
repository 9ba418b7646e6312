package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

func TestRuleBasedExtract_FeverAlwaysYieldsFeverLabel(t *testing.T) {
	for _, transcript := range []string{
		"patient: I have had a fever since Monday",
		"patient: Tengo FIEBRE",
		"doctor: the fever should pass",
	} {
		sections := RuleBasedExtract(transcript)
		assert.Contains(t, sections.Symptoms, "Fever", "transcript %q", transcript)
	}
}

func TestRuleBasedExtract_Deterministic(t *testing.T) {
	transcript := "patient: I have a fever and a cough\ndoctor: take ibuprofen and schedule a follow-up"

	first := RuleBasedExtract(transcript)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RuleBasedExtract(transcript))
	}

	assert.Equal(t, "Fever, Cough", first.Symptoms)
	assert.Equal(t, "Ibuprofen", first.Medications)
	assert.Equal(t, "Schedule follow-up appointment", first.FollowUp)
}

func TestRuleBasedExtract_NoMatchesYieldsDefaults(t *testing.T) {
	sections := RuleBasedExtract("doctor: good morning\npatient: good morning to you too")

	assert.Equal(t, DefaultSymptoms, sections.Symptoms)
	assert.Equal(t, DefaultDiagnosis, sections.Diagnosis)
	assert.Equal(t, DefaultMedications, sections.Medications)
	assert.Equal(t, DefaultFollowUp, sections.FollowUp)
}

func TestRuleBasedExtract_NoDuplicateLabels(t *testing.T) {
	// "fever" and "fiebre" map to the same label; it must appear once.
	sections := RuleBasedExtract("patient: tengo fiebre\ndoctor: how long have you had the fever?")
	assert.Equal(t, "Fever", sections.Symptoms)
}

func TestParseSections(t *testing.T) {
	text := "Symptoms: fever and chills\nDiagnosis: influenza\nMedications: rest, fluids\nFollow-up: return in one week"

	sections := ParseSections(text)
	assert.Equal(t, "fever and chills", sections.Symptoms)
	assert.Equal(t, "influenza", sections.Diagnosis)
	assert.Equal(t, "rest, fluids", sections.Medications)
	assert.Equal(t, "return in one week", sections.FollowUp)
}

func TestParseSections_CaseInsensitiveAndPartial(t *testing.T) {
	text := "SYMPTOMS: headache\nsome commentary\nfollow-up: none needed"

	sections := ParseSections(text)
	assert.Equal(t, "headache\nsome commentary", sections.Symptoms)
	assert.Equal(t, "none needed", sections.FollowUp)
	assert.Equal(t, "", sections.Diagnosis)
	assert.Equal(t, "", sections.Medications)
}

func TestParseSections_CaseMappingChangesByteLength(t *testing.T) {
	// Lowercasing "Ⱥ" grows it by one byte; label anchors must stay aligned
	// with the original text instead of panicking or slicing misaligned values.
	text := "ȺȺȺȺȺȺȺȺȺȺSymptoms: fever\nDiagnosis: influenza"

	sections := ParseSections(text)
	assert.Equal(t, "fever", sections.Symptoms)
	assert.Equal(t, "influenza", sections.Diagnosis)
}

func TestParseSections_LabelOnlyAtEndOfText(t *testing.T) {
	sections := ParseSections("ȺȺȺȺȺȺȺȺȺȺSymptoms:")
	assert.Equal(t, "", sections.Symptoms)
	assert.Equal(t, "", sections.Diagnosis)
}

func TestTranscript(t *testing.T) {
	messages := []models.Message{
		{SenderRole: models.RolePatient, OriginalText: "Tengo fiebre"},
		{SenderRole: models.RoleDoctor, OriginalText: "How long?"},
	}
	assert.Equal(t, "patient: Tengo fiebre\ndoctor: How long?", Transcript(messages))
}

func TestGenerate_NoLLMUsesRules(t *testing.T) {
	g := NewGenerator(nil)

	result := g.Generate(context.Background(), []models.Message{
		{SenderRole: models.RolePatient, OriginalText: "Tengo fiebre"},
	})

	assert.False(t, result.AIGenerated)
	assert.Equal(t, "rule-based", result.Method)
	assert.Contains(t, result.Symptoms, "Fever")
	assert.Contains(t, result.Content, "Consultation Summary")
}

func TestGenerate_LLMFailureFallsBackToRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(NewLLMClient(strings.TrimPrefix(srv.URL, "http://"), "test-model", 0.3))

	result := g.Generate(context.Background(), []models.Message{
		{SenderRole: models.RolePatient, OriginalText: "I have a fever"},
	})

	assert.False(t, result.AIGenerated)
	assert.Equal(t, "rule-based", result.Method)
	assert.Contains(t, result.Symptoms, "Fever")
}

func TestGenerate_LLMSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Symptoms: fever\nDiagnosis: influenza\nMedications: paracetamol\nFollow-up: rest for a week"}}]}`))
	}))
	defer srv.Close()

	g := NewGenerator(NewLLMClient(strings.TrimPrefix(srv.URL, "http://"), "test-model", 0.3))

	result := g.Generate(context.Background(), []models.Message{
		{SenderRole: models.RolePatient, OriginalText: "I feel terrible"},
	})

	assert.True(t, result.AIGenerated)
	assert.Equal(t, "llm", result.Method)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, "fever", result.Symptoms)
	assert.Equal(t, "influenza", result.Diagnosis)
}

func TestGenerate_UnparseableLLMOutputFallsBackToRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"I cannot help with that."}}]}`))
	}))
	defer srv.Close()

	g := NewGenerator(NewLLMClient(strings.TrimPrefix(srv.URL, "http://"), "test-model", 0.3))

	result := g.Generate(context.Background(), []models.Message{
		{SenderRole: models.RolePatient, OriginalText: "I have a cough"},
	})

	require.False(t, result.AIGenerated)
	assert.Equal(t, "rule-based", result.Method)
	assert.Contains(t, result.Symptoms, "Cough")
}

func TestLLMClient_ReportsInBandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request"}}`))
	}))
	defer srv.Close()

	client := NewLLMClient(strings.TrimPrefix(srv.URL, "http://"), "missing-model", 0.3)
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
