package chat

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{models.StatusActive, models.StatusEnded},
		{models.StatusActive, models.StatusArchived},
		{models.StatusEnded, models.StatusArchived},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	rejected := [][2]string{
		{models.StatusEnded, models.StatusActive},
		{models.StatusArchived, models.StatusActive},
		{models.StatusArchived, models.StatusEnded},
		{models.StatusActive, models.StatusActive},
		{models.StatusEnded, models.StatusEnded},
		{models.StatusArchived, models.StatusArchived},
	}
	for _, tr := range rejected {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be rejected", tr[0], tr[1])
	}
}

func TestResolveCreate(t *testing.T) {
	// Without an active conversation every resolution creates a new one.
	assert.Equal(t, CreateNew, ResolveCreate(false, ""))
	assert.Equal(t, CreateNew, ResolveCreate(false, ConflictReuse))
	assert.Equal(t, CreateNew, ResolveCreate(false, ConflictEndAndCreate))

	assert.Equal(t, CreateConflict, ResolveCreate(true, ""))
	assert.Equal(t, ReuseExisting, ResolveCreate(true, ConflictReuse))
	assert.Equal(t, EndThenCreate, ResolveCreate(true, ConflictEndAndCreate))

	// Unrecognized resolutions fall back to reporting the conflict.
	assert.Equal(t, CreateConflict, ResolveCreate(true, "merge"))
}

func TestTargetLanguage(t *testing.T) {
	conv := &models.Conversation{DoctorLanguage: "en", PatientLanguage: "es"}

	// The target is always the other participant's language, regardless of
	// the text itself.
	assert.Equal(t, "es", TargetLanguage(models.RoleDoctor, conv))
	assert.Equal(t, "en", TargetLanguage(models.RolePatient, conv))

	assert.Equal(t, "en", SourceLanguage(models.RoleDoctor, conv))
	assert.Equal(t, "es", SourceLanguage(models.RolePatient, conv))
}

func TestValidateSendInput_EmptyContentRejected(t *testing.T) {
	err := ValidateSendInput(SendInput{OriginalText: "   \n"})
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidateSendInput(SendInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateSendInput_AudioOnlyAccepted(t *testing.T) {
	audio := "audio/abc.webm"
	err := ValidateSendInput(SendInput{AudioURL: &audio, MessageType: models.MessageTypeAudio})
	assert.NoError(t, err)
}

func TestValidateSendInput_LengthCap(t *testing.T) {
	assert.NoError(t, ValidateSendInput(SendInput{OriginalText: strings.Repeat("a", 2000)}))

	err := ValidateSendInput(SendInput{OriginalText: strings.Repeat("a", 2001)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateSendInput_LengthCapCountsCharacters(t *testing.T) {
	// 2000 CJK characters are far more than 2000 bytes but still within the cap.
	assert.NoError(t, ValidateSendInput(SendInput{OriginalText: strings.Repeat("疼", 2000)}))

	err := ValidateSendInput(SendInput{OriginalText: strings.Repeat("疼", 2001)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateSendInput_UnknownMessageType(t *testing.T) {
	err := ValidateSendInput(SendInput{OriginalText: "hi", MessageType: "video"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoleOf(t *testing.T) {
	conv := &models.Conversation{
		DoctorID:  uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		PatientID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
	}

	assert.Equal(t, models.RoleDoctor, conv.RoleOf(conv.DoctorID))
	assert.Equal(t, models.RolePatient, conv.RoleOf(conv.PatientID))
	assert.Equal(t, "", conv.RoleOf(uuid.MustParse("33333333-3333-3333-3333-333333333333")))
}
