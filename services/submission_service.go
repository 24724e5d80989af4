package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coaching-platform-api/models"
	"coaching-platform-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionService owns creation and listing of athlete video submissions.
type SubmissionService struct {
	db     *gorm.DB
	skills *SkillService
	events *QueueEventHub
}

func NewSubmissionService(db *gorm.DB, events *QueueEventHub) *SubmissionService {
	return &SubmissionService{
		db:     db,
		skills: NewSkillService(db),
		events: events,
	}
}

// SubmissionPage is one page of a cursor-based submission listing.
type SubmissionPage struct {
	Submissions []models.Submission `json:"submissions"`
	NextCursor  string              `json:"next_cursor,omitempty"`
	HasMore     bool                `json:"has_more"`
}

// Create persists a new pending submission for the athlete. The submission
// becomes visible in the unclaimed queue immediately; the queue is a
// filtered view over the same table.
func (s *SubmissionService) Create(athleteID uint, mediaRef, skillTag string) (*models.Submission, error) {
	mediaRef = strings.TrimSpace(mediaRef)
	skillTag = strings.TrimSpace(skillTag)

	if mediaRef == "" {
		return nil, NewValidationError("media_ref is required")
	}
	if skillTag == "" {
		return nil, NewValidationError("skill_tag is required")
	}
	if !utils.ValidateSkillTagFormat(skillTag) {
		return nil, NewValidationError(fmt.Sprintf("malformed skill tag '%s'", skillTag))
	}

	known, err := s.skills.IsKnownSkillTag(skillTag)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, NewValidationError(fmt.Sprintf("unknown skill tag '%s'", skillTag))
	}

	// Microsecond precision keeps stored timestamps identical to what the
	// list cursor encodes.
	now := time.Now().Truncate(time.Microsecond)
	submission := models.Submission{
		SubmissionNumber: generateSubmissionNumber(now),
		AthleteID:        athleteID,
		MediaRef:         mediaRef,
		SkillTag:         skillTag,
		Status:           models.SubmissionStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.db.Create(&submission).Error; err != nil {
		return nil, err
	}

	s.events.Broadcast(QueueEvent{Event: QueueEventSubmissionCreated, Submission: &submission})

	return &submission, nil
}

// Get returns a single submission by id.
func (s *SubmissionService) Get(submissionID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Athlete").Preload("Coach").Preload("Review").
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Submission not found")
		}
		return nil, err
	}
	return &submission, nil
}

// ListByAthlete returns the athlete's submissions, newest first.
func (s *SubmissionService) ListByAthlete(athleteID uint, cursor string, limit int) (*SubmissionPage, error) {
	query := s.db.Where("athlete_id = ?", athleteID)
	return s.listPage(query, cursor, limit)
}

// ListByCoach returns submissions claimed by the coach, any status, newest
// first.
func (s *SubmissionService) ListByCoach(coachID uint, cursor string, limit int) (*SubmissionPage, error) {
	query := s.db.Where("coach_id = ?", coachID)
	return s.listPage(query, cursor, limit)
}

// ListAll returns every submission, optionally filtered, for admin views.
func (s *SubmissionService) ListAll(status, skillTag string, cursor string, limit int) (*SubmissionPage, error) {
	query := s.db.Session(&gorm.Session{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if skillTag != "" {
		query = query.Where("skill_tag = ?", skillTag)
	}
	return s.listPage(query, cursor, limit)
}

func (s *SubmissionService) listPage(query *gorm.DB, cursor string, limit int) (*SubmissionPage, error) {
	limit = normalizeLimit(limit)

	after, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query = query.Where("deleted_at IS NULL").
		Preload("Athlete").Preload("Coach").
		Order("created_at DESC, submission_id DESC").
		Limit(limit + 1)

	if after != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND submission_id < ?)",
			after.CreatedAt, after.CreatedAt, after.LastID,
		)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}

	page := &SubmissionPage{Submissions: submissions}
	if len(submissions) > limit {
		page.Submissions = submissions[:limit]
		page.HasMore = true
		last := page.Submissions[limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.SubmissionID)
	}

	return page, nil
}

// generateSubmissionNumber builds a human-readable reference like
// SUB-2026-4F21A9C3. Uniqueness comes from the uuid fragment; the unique
// column constraint backstops it.
func generateSubmissionNumber(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SUB-%d-%s", now.Year(), fragment)
}
