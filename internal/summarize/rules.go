package summarize

import "strings"

// Fixed default phrases used when no keyword in a section's table matches.
const (
	DefaultSymptoms    = "Symptoms not explicitly detailed"
	DefaultDiagnosis   = "Diagnosis not explicitly detailed"
	DefaultMedications = "Medications not explicitly detailed"
	DefaultFollowUp    = "Follow-up actions not explicitly detailed"
)

// keywordLabel maps a transcript substring to the label it contributes to a
// section. Spanish keywords cover the most common patient language in the
// deployment.
type keywordLabel struct {
	keyword string
	label   string
}

var symptomKeywords = []keywordLabel{
	{"fever", "Fever"},
	{"fiebre", "Fever"},
	{"pain", "Pain"},
	{"dolor", "Pain"},
	{"headache", "Headache"},
	{"cough", "Cough"},
	{"tos", "Cough"},
	{"nausea", "Nausea"},
	{"fatigue", "Fatigue"},
	{"cansancio", "Fatigue"},
	{"dizziness", "Dizziness"},
	{"mareo", "Dizziness"},
	{"sore throat", "Sore throat"},
	{"rash", "Rash"},
}

var diagnosisKeywords = []keywordLabel{
	{"infection", "Possible infection"},
	{"infeccion", "Possible infection"},
	{"flu", "Influenza"},
	{"gripe", "Influenza"},
	{"cold", "Common cold"},
	{"resfriado", "Common cold"},
	{"allergy", "Allergic reaction"},
	{"alergia", "Allergic reaction"},
	{"migraine", "Migraine"},
	{"asthma", "Asthma"},
	{"asma", "Asthma"},
	{"diabetes", "Diabetes"},
	{"hypertension", "Hypertension"},
}

var medicationKeywords = []keywordLabel{
	{"ibuprofen", "Ibuprofen"},
	{"ibuprofeno", "Ibuprofen"},
	{"paracetamol", "Paracetamol"},
	{"acetaminophen", "Paracetamol"},
	{"antibiotic", "Antibiotics"},
	{"antibiotico", "Antibiotics"},
	{"aspirin", "Aspirin"},
	{"aspirina", "Aspirin"},
	{"antihistamine", "Antihistamine"},
	{"insulin", "Insulin"},
	{"insulina", "Insulin"},
	{"medication", "Medication discussed"},
	{"medicamento", "Medication discussed"},
}

var followUpKeywords = []keywordLabel{
	{"follow-up", "Schedule follow-up appointment"},
	{"follow up", "Schedule follow-up appointment"},
	{"seguimiento", "Schedule follow-up appointment"},
	{"appointment", "Appointment discussed"},
	{"cita", "Appointment discussed"},
	{"blood test", "Laboratory tests ordered"},
	{"analisis", "Laboratory tests ordered"},
	{"rest", "Rest recommended"},
	{"reposo", "Rest recommended"},
	{"hospital", "Hospital referral mentioned"},
}

// matchSection scans the transcript case-insensitively against one keyword
// table, joining matched labels in table order without duplicates. It falls
// back to the section's default phrase when nothing matches.
func matchSection(transcript string, table []keywordLabel, defaultPhrase string) string {
	lower := strings.ToLower(transcript)

	var labels []string
	seen := map[string]bool{}
	for _, kl := range table {
		if !strings.Contains(lower, kl.keyword) {
			continue
		}
		if seen[kl.label] {
			continue
		}
		seen[kl.label] = true
		labels = append(labels, kl.label)
	}

	if len(labels) == 0 {
		return defaultPhrase
	}
	return strings.Join(labels, ", ")
}

// RuleBasedExtract deterministically fills the four summary sections from the
// transcript by keyword matching.
func RuleBasedExtract(transcript string) Sections {
	return Sections{
		Symptoms:    matchSection(transcript, symptomKeywords, DefaultSymptoms),
		Diagnosis:   matchSection(transcript, diagnosisKeywords, DefaultDiagnosis),
		Medications: matchSection(transcript, medicationKeywords, DefaultMedications),
		FollowUp:    matchSection(transcript, followUpKeywords, DefaultFollowUp),
	}
}
