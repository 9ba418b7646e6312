package chat

import (
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

// allowedTransitions is the conversation status state machine: active is the
// initial state, archived is terminal, and an ended conversation can only be
// archived (no reactivation).
var allowedTransitions = map[string][]string{
	models.StatusActive: {models.StatusEnded, models.StatusArchived},
	models.StatusEnded:  {models.StatusArchived},
}

// Conflict resolutions a caller may supply when an active conversation for
// the pair already exists.
const (
	ConflictReuse        = "reuse"
	ConflictEndAndCreate = "endAndCreate"
)

// CreateOutcome is the decision for a conversation create request.
type CreateOutcome int

const (
	// CreateNew: no active conversation exists for the pair.
	CreateNew CreateOutcome = iota
	// ReuseExisting: return the existing active conversation unchanged.
	ReuseExisting
	// EndThenCreate: end the existing conversation, then create a new one.
	EndThenCreate
	// CreateConflict: report the existing active conversation to the caller.
	CreateConflict
)

// ResolveCreate decides what a create request does, given whether the pair
// already has an active conversation and the caller's conflict resolution.
// An existing active conversation without an explicit resolution is a
// conflict.
func ResolveCreate(hasActive bool, onConflict string) CreateOutcome {
	if !hasActive {
		return CreateNew
	}
	switch onConflict {
	case ConflictReuse:
		return ReuseExisting
	case ConflictEndAndCreate:
		return EndThenCreate
	}
	return CreateConflict
}

// CanTransition reports whether a conversation may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TargetLanguage resolves the translation target for a message: always the
// other participant's language relative to the sender's role, independent of
// the text's actual language.
func TargetLanguage(senderRole string, conv *models.Conversation) string {
	if senderRole == models.RoleDoctor {
		return conv.PatientLanguage
	}
	return conv.DoctorLanguage
}

// SourceLanguage returns the sender's own stored language, used as the
// translation source hint.
func SourceLanguage(senderRole string, conv *models.Conversation) string {
	if senderRole == models.RoleDoctor {
		return conv.DoctorLanguage
	}
	return conv.PatientLanguage
}
