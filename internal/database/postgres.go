package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/config"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

// InitDB initializes the PostgreSQL connection and runs migrations.
func InitDB(config *config.Config) *gorm.DB {
	// TranslateError lets callers match driver errors against gorm sentinels,
	// in particular gorm.ErrDuplicatedKey from the unique index below.
	db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// auto migrate schema
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}, &models.Summary{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// The lookup-before-create check in the conversation handler is not atomic.
	// A partial unique index turns the concurrent-create race into an insert
	// error instead of a duplicate active conversation.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_conversation
		 ON conversations (doctor_id, patient_id) WHERE status = 'active'`,
	).Error; err != nil {
		log.Printf("Warning: failed to create active-conversation index: %v", err)
	}

	return db
}
