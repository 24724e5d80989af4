package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"coaching-platform-api/config"
	"coaching-platform-api/models"

	"gorm.io/gorm"
)

// AuditMeta carries request-level context into audit log rows.
type AuditMeta struct {
	IPAddress string
	UserAgent string
}

// RubricScoreInput is one graded criterion in a draft payload.
type RubricScoreInput struct {
	Criterion string  `json:"criterion" binding:"required"`
	Score     float64 `json:"score"`
	Comment   string  `json:"comment"`
}

// AnnotationInput is one timecoded note in a draft payload.
type AnnotationInput struct {
	TimecodeMs int    `json:"timecode_ms"`
	Comment    string `json:"comment" binding:"required"`
}

// DrillInput is one recommended drill in a draft payload.
type DrillInput struct {
	Title string `json:"title" binding:"required"`
	Notes string `json:"notes"`
}

// ReviewContent is the full body of a draft review. Saving replaces the
// previous content wholesale.
type ReviewContent struct {
	Summary     string             `json:"summary"`
	Scores      []RubricScoreInput `json:"scores"`
	Annotations []AnnotationInput  `json:"annotations"`
	Drills      []DrillInput       `json:"drills"`
}

// ReviewWorkflowService owns the claim/review/publish state machine.
//
// Claim exclusivity is delegated to the store: every transition is a single
// conditional UPDATE guarded by the current status, checked via
// RowsAffected. There is no application-level lock and no read-then-write
// pair anywhere in the transition path.
type ReviewWorkflowService struct {
	db       *gorm.DB
	events   *QueueEventHub
	sendMail func(to []string, subject, html string) error
}

func NewReviewWorkflowService(db *gorm.DB, events *QueueEventHub) *ReviewWorkflowService {
	return &ReviewWorkflowService{
		db:       db,
		events:   events,
		sendMail: config.SendMail,
	}
}

// Claim gives the coach the exclusive right to review a pending submission.
// Under concurrent claims exactly one caller wins; the rest get
// AlreadyClaimedError.
func (s *ReviewWorkflowService) Claim(submissionID, coachID uint, meta AuditMeta) (*models.Submission, error) {
	now := time.Now()
	var claimed models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND status = ? AND deleted_at IS NULL", submissionID, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":     models.SubmissionStatusClaimed,
				"coach_id":   coachID,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The conditional write already decided the race; this read only
			// picks the right error for the caller.
			return s.classifyClaimFailure(tx, submissionID)
		}

		if err := tx.Where("submission_id = ?", submissionID).First(&claimed).Error; err != nil {
			return err
		}

		if err := s.writeHistory(tx, &claimed, models.SubmissionStatusPending, coachID, "", "claim", now); err != nil {
			return err
		}
		if err := s.writeNotification(tx, claimed.AthleteID, models.NotificationTypeSubmissionClaimed,
			"A coach is reviewing your submission",
			fmt.Sprintf("Submission %s has been picked up for review.", claimed.SubmissionNumber),
			&claimed.SubmissionID, nil, now); err != nil {
			return err
		}
		return s.writeAudit(tx, coachID, "claim", &claimed,
			map[string]interface{}{"status": models.SubmissionStatusClaimed, "coach_id": coachID},
			"Submission claimed for review", meta, now)
	})
	if err != nil {
		return nil, err
	}

	s.events.Broadcast(QueueEvent{Event: QueueEventSubmissionClaimed, Submission: &claimed})

	return &claimed, nil
}

func (s *ReviewWorkflowService) classifyClaimFailure(tx *gorm.DB, submissionID uint) error {
	var current models.Submission
	if err := tx.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Submission not found")
		}
		return err
	}

	switch current.Status {
	case models.SubmissionStatusClaimed:
		return NewAlreadyClaimedError("Submission was already claimed by another coach")
	case models.SubmissionStatusCompleted:
		return NewInvalidStateError("Submission has already been reviewed")
	case models.SubmissionStatusDeclined:
		return NewInvalidStateError("Submission has been declined")
	default:
		return NewInvalidStateError("Submission is not pending")
	}
}

// SaveDraftReview upserts the claimant's draft. The submission stays
// claimed; the draft is never visible to the athlete.
func (s *ReviewWorkflowService) SaveDraftReview(submissionID, coachID uint, content ReviewContent) (*models.Review, error) {
	if err := validateReviewContent(&content); err != nil {
		return nil, err
	}

	now := time.Now()
	var saved models.Review

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("Submission not found")
			}
			return err
		}

		if submission.Status != models.SubmissionStatusClaimed {
			return NewInvalidStateError("Submission must be claimed before a review can be written")
		}
		if submission.CoachID == nil || *submission.CoachID != coachID {
			return NewPermissionError("Submission is claimed by another coach")
		}

		var review models.Review
		err := tx.Where("submission_id = ?", submissionID).First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				SubmissionID: submissionID,
				CoachID:      coachID,
				Status:       models.ReviewStatusDraft,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if review.Status == models.ReviewStatusPublished {
				return NewInvalidStateError("Review has already been published")
			}
			if review.CoachID != coachID {
				return NewPermissionError("Review belongs to another coach")
			}
		}

		summary := strings.TrimSpace(content.Summary)
		updates := map[string]interface{}{
			"summary":    nil,
			"updated_at": now,
		}
		if summary != "" {
			updates["summary"] = summary
		}
		if err := tx.Model(&models.Review{}).Where("review_id = ?", review.ReviewID).Updates(updates).Error; err != nil {
			return err
		}

		if err := replaceReviewContent(tx, review.ReviewID, &content); err != nil {
			return err
		}

		return tx.Preload("Scores").Preload("Annotations").Preload("Drills").
			Where("review_id = ?", review.ReviewID).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func validateReviewContent(content *ReviewContent) error {
	for _, score := range content.Scores {
		if strings.TrimSpace(score.Criterion) == "" {
			return NewValidationError("rubric score criterion is required")
		}
	}
	for _, annotation := range content.Annotations {
		if annotation.TimecodeMs < 0 {
			return NewValidationError("annotation timecode must not be negative")
		}
		if strings.TrimSpace(annotation.Comment) == "" {
			return NewValidationError("annotation comment is required")
		}
	}
	for _, drill := range content.Drills {
		if strings.TrimSpace(drill.Title) == "" {
			return NewValidationError("drill title is required")
		}
	}
	return nil
}

func replaceReviewContent(tx *gorm.DB, reviewID uint, content *ReviewContent) error {
	if err := tx.Where("review_id = ?", reviewID).Delete(&models.RubricScore{}).Error; err != nil {
		return err
	}
	if err := tx.Where("review_id = ?", reviewID).Delete(&models.Annotation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("review_id = ?", reviewID).Delete(&models.DrillRecommendation{}).Error; err != nil {
		return err
	}

	for i, input := range content.Scores {
		score := models.RubricScore{
			ReviewID:     reviewID,
			Criterion:    strings.TrimSpace(input.Criterion),
			Score:        input.Score,
			DisplayOrder: i + 1,
		}
		if comment := strings.TrimSpace(input.Comment); comment != "" {
			score.Comment = &comment
		}
		if err := tx.Create(&score).Error; err != nil {
			return err
		}
	}
	for i, input := range content.Annotations {
		annotation := models.Annotation{
			ReviewID:     reviewID,
			TimecodeMs:   input.TimecodeMs,
			Comment:      strings.TrimSpace(input.Comment),
			DisplayOrder: i + 1,
		}
		if err := tx.Create(&annotation).Error; err != nil {
			return err
		}
	}
	for i, input := range content.Drills {
		drill := models.DrillRecommendation{
			ReviewID:     reviewID,
			Title:        strings.TrimSpace(input.Title),
			DisplayOrder: i + 1,
		}
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			drill.Notes = &notes
		}
		if err := tx.Create(&drill).Error; err != nil {
			return err
		}
	}
	return nil
}

// PublishReview publishes the claimant's draft in one transaction: the
// review becomes published, the submission becomes completed and the athlete
// gets a notification row. Readers never observe a partial publish.
func (s *ReviewWorkflowService) PublishReview(submissionID, coachID uint, meta AuditMeta) (*models.Review, error) {
	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var submission models.Submission
	if err := tx.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Submission not found")
		}
		return nil, err
	}

	switch submission.Status {
	case models.SubmissionStatusClaimed:
	case models.SubmissionStatusCompleted:
		tx.Rollback()
		return nil, NewInvalidStateError("Submission has already been reviewed")
	default:
		tx.Rollback()
		return nil, NewInvalidStateError("Submission is not under review")
	}

	if submission.CoachID == nil || *submission.CoachID != coachID {
		tx.Rollback()
		return nil, NewPermissionError("Submission is claimed by another coach")
	}

	var review models.Review
	if err := tx.Where("submission_id = ?", submissionID).First(&review).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Draft review not found")
		}
		return nil, err
	}

	if review.CoachID != coachID {
		tx.Rollback()
		return nil, NewPermissionError("Review belongs to another coach")
	}
	if review.Status == models.ReviewStatusPublished {
		tx.Rollback()
		return nil, NewInvalidStateError("Review has already been published")
	}

	var scoreCount, annotationCount int64
	if err := tx.Model(&models.RubricScore{}).Where("review_id = ?", review.ReviewID).Count(&scoreCount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&models.Annotation{}).Where("review_id = ?", review.ReviewID).Count(&annotationCount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if scoreCount == 0 && annotationCount == 0 {
		tx.Rollback()
		return nil, NewValidationError("Cannot publish an empty review")
	}

	// Guard the submission transition with the same conditional-write
	// pattern as Claim so a concurrent release/decline cannot slip between
	// the read above and this update.
	res := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submissionID, models.SubmissionStatusClaimed).
		Updates(map[string]interface{}{
			"status":     models.SubmissionStatusCompleted,
			"updated_at": now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, NewInvalidStateError("Submission is no longer under review")
	}

	if err := tx.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":       models.ReviewStatusPublished,
			"published_at": now,
			"updated_at":   now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.writeNotification(tx, submission.AthleteID, models.NotificationTypeReviewPublished,
		"Your review is ready",
		fmt.Sprintf("The review for submission %s has been published.", submission.SubmissionNumber),
		&submission.SubmissionID, &review.ReviewID, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.writeHistory(tx, &submission, models.SubmissionStatusClaimed, coachID, "", "publish_review", now); err != nil {
		tx.Rollback()
		return nil, err
	}
	submission.Status = models.SubmissionStatusCompleted
	submission.UpdatedAt = now

	if err := s.writeAudit(tx, coachID, "publish_review", &submission,
		map[string]interface{}{"review_id": review.ReviewID, "status": models.SubmissionStatusCompleted},
		"Review published", meta, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	var published models.Review
	if err := s.db.Preload("Scores").Preload("Annotations").Preload("Drills").
		Where("review_id = ?", review.ReviewID).First(&published).Error; err != nil {
		return nil, err
	}

	s.events.Broadcast(QueueEvent{Event: QueueEventSubmissionCompleted, Submission: &submission})
	go s.emailReviewPublished(submission, published)

	return &published, nil
}

// ReleaseClaim reverts a claimed submission to pending so another coach can
// pick it up. The claimant's draft (never seen by the athlete) is discarded.
func (s *ReviewWorkflowService) ReleaseClaim(submissionID, coachID uint, meta AuditMeta) (*models.Submission, error) {
	now := time.Now()
	var released models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND status = ? AND coach_id = ? AND deleted_at IS NULL",
				submissionID, models.SubmissionStatusClaimed, coachID).
			Updates(map[string]interface{}{
				"status":     models.SubmissionStatusPending,
				"coach_id":   nil,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.classifyReleaseFailure(tx, submissionID, coachID)
		}

		var review models.Review
		err := tx.Where("submission_id = ? AND status = ?", submissionID, models.ReviewStatusDraft).First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			content := ReviewContent{}
			if err := replaceReviewContent(tx, review.ReviewID, &content); err != nil {
				return err
			}
			if err := tx.Delete(&models.Review{}, review.ReviewID).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("submission_id = ?", submissionID).First(&released).Error; err != nil {
			return err
		}

		if err := s.writeHistory(tx, &released, models.SubmissionStatusClaimed, coachID, "", "release_claim", now); err != nil {
			return err
		}
		return s.writeAudit(tx, coachID, "release_claim", &released,
			map[string]interface{}{"status": models.SubmissionStatusPending},
			"Claim released", meta, now)
	})
	if err != nil {
		return nil, err
	}

	s.events.Broadcast(QueueEvent{Event: QueueEventSubmissionReleased, Submission: &released})

	return &released, nil
}

func (s *ReviewWorkflowService) classifyReleaseFailure(tx *gorm.DB, submissionID, coachID uint) error {
	var current models.Submission
	if err := tx.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Submission not found")
		}
		return err
	}

	if current.Status != models.SubmissionStatusClaimed {
		return NewInvalidStateError("Submission is not claimed")
	}
	if current.CoachID == nil || *current.CoachID != coachID {
		return NewPermissionError("Submission is claimed by another coach")
	}
	return NewInvalidStateError("Submission is not claimed")
}

// Decline terminally rejects a submission without a review. Coaches may
// decline pending submissions or their own claims; admins may decline
// anything non-terminal.
func (s *ReviewWorkflowService) Decline(submissionID, actorID uint, actorRole int, reason string, meta AuditMeta) (*models.Submission, error) {
	now := time.Now()
	reason = strings.TrimSpace(reason)
	staff := actorRole == models.RoleAdmin || actorRole == models.RoleSuperadmin
	var declined models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("Submission not found")
			}
			return err
		}

		if submission.IsTerminal() {
			return NewInvalidStateError("Submission is already " + submission.Status)
		}
		if submission.Status == models.SubmissionStatusClaimed && !staff {
			if submission.CoachID == nil || *submission.CoachID != actorID {
				return NewPermissionError("Submission is claimed by another coach")
			}
		}
		if submission.Status == models.SubmissionStatusPending && !staff && actorRole != models.RoleCoach {
			return NewPermissionError("Only coaches or admins may decline submissions")
		}

		updates := map[string]interface{}{
			"status":         models.SubmissionStatusDeclined,
			"decline_reason": nil,
			"updated_at":     now,
		}
		if reason != "" {
			updates["decline_reason"] = reason
		}
		res := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND status = ?", submissionID, submission.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NewInvalidStateError("Submission is no longer " + submission.Status)
		}

		oldStatus := submission.Status
		submission.Status = models.SubmissionStatusDeclined
		submission.UpdatedAt = now

		if err := s.writeHistory(tx, &submission, oldStatus, actorID, reason, "decline", now); err != nil {
			return err
		}
		if err := s.writeNotification(tx, submission.AthleteID, models.NotificationTypeSubmissionDeclined,
			"Your submission was declined",
			declineMessage(submission.SubmissionNumber, reason),
			&submission.SubmissionID, nil, now); err != nil {
			return err
		}
		if err := s.writeAudit(tx, actorID, "decline", &submission,
			map[string]interface{}{"status": models.SubmissionStatusDeclined, "reason": reason},
			"Submission declined", meta, now); err != nil {
			return err
		}

		declined = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Broadcast(QueueEvent{Event: QueueEventSubmissionDeclined, Submission: &declined})

	return &declined, nil
}

func declineMessage(submissionNumber, reason string) string {
	if reason == "" {
		return fmt.Sprintf("Submission %s was declined without review.", submissionNumber)
	}
	return fmt.Sprintf("Submission %s was declined without review: %s", submissionNumber, reason)
}

// GetReview loads a review with its content, enforcing visibility: drafts
// are only visible to the authoring coach and staff, published reviews also
// to the owning athlete.
func (s *ReviewWorkflowService) GetReview(reviewID, viewerID uint, viewerRole int) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("Scores").Preload("Annotations").Preload("Drills").Preload("Coach").
		Where("review_id = ?", reviewID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Review not found")
		}
		return nil, err
	}

	staff := viewerRole == models.RoleAdmin || viewerRole == models.RoleSuperadmin
	if staff || review.CoachID == viewerID {
		return &review, nil
	}

	if !review.IsPublished() {
		return nil, NewPermissionError("Review is not published")
	}

	var submission models.Submission
	if err := s.db.Where("submission_id = ?", review.SubmissionID).First(&submission).Error; err != nil {
		return nil, err
	}
	if submission.AthleteID != viewerID {
		return nil, NewPermissionError("You do not have access to this review")
	}
	return &review, nil
}

func (s *ReviewWorkflowService) writeHistory(tx *gorm.DB, submission *models.Submission, oldStatus string, changedBy uint, reason, note string, now time.Time) error {
	history := models.SubmissionStatusHistory{
		SubmissionID: submission.SubmissionID,
		OldStatus:    &oldStatus,
		NewStatus:    submission.Status,
		ChangedBy:    changedBy,
		CreatedAt:    now,
	}
	if reason != "" {
		history.Reason = &reason
	}
	if note != "" {
		history.Notes = &note
	}
	return tx.Create(&history).Error
}

func (s *ReviewWorkflowService) writeNotification(tx *gorm.DB, userID uint, notifType, title, message string, submissionID, reviewID *uint, now time.Time) error {
	notification := models.Notification{
		UserID:              userID,
		Title:               title,
		Message:             message,
		Type:                notifType,
		RelatedSubmissionID: submissionID,
		RelatedReviewID:     reviewID,
		IsRead:              false,
		CreateAt:            now,
	}
	return tx.Create(&notification).Error
}

func (s *ReviewWorkflowService) writeAudit(tx *gorm.DB, userID uint, action string, submission *models.Submission, values map[string]interface{}, description string, meta AuditMeta, now time.Time) error {
	serialized, _ := json.Marshal(values)
	entityID := submission.SubmissionID
	audit := models.AuditLog{
		UserID:      userID,
		Action:      action,
		EntityType:  "submission",
		EntityID:    &entityID,
		NewValues:   strPtr(string(serialized)),
		Description: strPtr(description),
		IPAddress:   meta.IPAddress,
		CreatedAt:   now,
	}
	if submission.SubmissionNumber != "" {
		number := submission.SubmissionNumber
		audit.EntityNumber = &number
	}
	if strings.TrimSpace(meta.UserAgent) != "" {
		ua := meta.UserAgent
		audit.UserAgent = &ua
	}
	return tx.Create(&audit).Error
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// emailReviewPublished delivers the published-review email. Delivery is
// best-effort: the notification row is already committed, mail failures are
// only logged.
func (s *ReviewWorkflowService) emailReviewPublished(submission models.Submission, review models.Review) {
	var athlete models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", submission.AthleteID).First(&athlete).Error; err != nil {
		log.Printf("review published email skipped (submission=%s): %v", submission.SubmissionNumber, err)
		return
	}

	subject := fmt.Sprintf("Your review for %s is ready", submission.SubmissionNumber)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>The review for your <b>%s</b> submission has been published. Sign in to see your scores and notes.</p>",
		athlete.FullName(), submission.SkillTag,
	)
	if err := s.sendMail([]string{athlete.Email}, subject, html); err != nil {
		log.Printf("review published email send failed (to=%s): %v", athlete.Email, err)
	}
}
