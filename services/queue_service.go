package services

import (
	"strings"

	"coaching-platform-api/models"

	"gorm.io/gorm"
)

// QueueService derives the queue views coaches work from. Both queues are
// filtered views over the submissions table; live updates come from the
// QueueEventHub, so these snapshot queries carry no subscription state.
type QueueService struct {
	db *gorm.DB
}

func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{db: db}
}

// UnclaimedQueue returns pending submissions oldest-first so coaches drain
// the queue fairly. An optional skill filter narrows the view.
func (s *QueueService) UnclaimedQueue(skillFilter string) ([]models.Submission, error) {
	query := s.db.Preload("Athlete").
		Where("status = ? AND deleted_at IS NULL", models.SubmissionStatusPending)

	if skill := strings.TrimSpace(skillFilter); skill != "" {
		query = query.Where("skill_tag = ?", skill)
	}

	var submissions []models.Submission
	if err := query.Order("created_at ASC, submission_id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// MyQueue returns the submissions currently claimed by the coach.
func (s *QueueService) MyQueue(coachID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.Preload("Athlete").
		Where("status = ? AND coach_id = ? AND deleted_at IS NULL", models.SubmissionStatusClaimed, coachID).
		Order("created_at ASC, submission_id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
