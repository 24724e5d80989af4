package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"coaching-platform-api/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the full
// schema. One open connection keeps SQLite's locking out of the way while
// still exercising real conditional updates and transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Skill{},
		&models.Submission{},
		&models.Review{},
		&models.RubricScore{},
		&models.Annotation{},
		&models.DrillRecommendation{},
		&models.Comment{},
		&models.Notification{},
		&models.SubmissionStatusHistory{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	ClearSkillCache()
	t.Cleanup(ClearSkillCache)

	seedSkill(t, db, "guard-pass")
	seedSkill(t, db, "takedown")

	return db
}

func seedSkill(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	skill := models.Skill{
		Code:     code,
		Name:     strings.ReplaceAll(code, "-", " "),
		IsActive: true,
	}
	if err := db.Create(&skill).Error; err != nil {
		t.Fatalf("failed to seed skill %s: %v", code, err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, roleID int) models.User {
	t.Helper()
	now := time.Now()
	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:  "not-a-real-hash",
		RoleID:    roleID,
		CreateAt:  &now,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// newWorkflow builds the review workflow service with mail stubbed out.
func newWorkflow(db *gorm.DB, events *QueueEventHub) *ReviewWorkflowService {
	svc := NewReviewWorkflowService(db, events)
	svc.sendMail = func([]string, string, string) error { return nil }
	return svc
}

func createPendingSubmission(t *testing.T, db *gorm.DB, events *QueueEventHub, athleteID uint) *models.Submission {
	t.Helper()
	svc := NewSubmissionService(db, events)
	submission, err := svc.Create(athleteID, "https://cdn.example.com/clip1.mp4", "guard-pass")
	if err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}
	return submission
}

func mustGetSubmission(t *testing.T, db *gorm.DB, submissionID uint) models.Submission {
	t.Helper()
	var submission models.Submission
	if err := db.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		t.Fatalf("failed to load submission %d: %v", submissionID, err)
	}
	return submission
}
