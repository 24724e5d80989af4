package services

import (
	"errors"
	"time"

	"coaching-platform-api/models"
	"coaching-platform-api/utils"

	"gorm.io/gorm"
)

// CommentService owns discussion under published reviews.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create adds a comment to a published review. Comments can never be created
// against a draft. The participant on the other side of the review gets a
// notification row.
func (s *CommentService) Create(reviewID, authorID uint, authorRole int, body string) (*models.Comment, error) {
	body = utils.SanitizeInput(body)
	if body == "" {
		return nil, NewValidationError("comment body is required")
	}

	now := time.Now()
	var comment models.Comment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("Review not found")
			}
			return err
		}

		if !review.IsPublished() {
			return NewInvalidStateError("Comments are only allowed on published reviews")
		}

		var submission models.Submission
		if err := tx.Where("submission_id = ?", review.SubmissionID).First(&submission).Error; err != nil {
			return err
		}

		staff := authorRole == models.RoleAdmin || authorRole == models.RoleSuperadmin
		if !staff && authorID != submission.AthleteID && authorID != review.CoachID {
			return NewPermissionError("You do not have access to this review")
		}

		comment = models.Comment{
			ReviewID:   reviewID,
			AuthorID:   authorID,
			AuthorRole: authorRole,
			Body:       body,
			CreatedAt:  now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		// Notify the counterpart: coach comments reach the athlete and vice
		// versa. Staff comments notify both participants.
		recipients := make([]uint, 0, 2)
		if authorID != submission.AthleteID {
			recipients = append(recipients, submission.AthleteID)
		}
		if authorID != review.CoachID {
			recipients = append(recipients, review.CoachID)
		}
		for _, recipient := range recipients {
			notification := models.Notification{
				UserID:              recipient,
				Title:               "New comment on a review",
				Message:             "A new comment was added to a review you are part of.",
				Type:                models.NotificationTypeCommentAdded,
				RelatedSubmissionID: &review.SubmissionID,
				RelatedReviewID:     &review.ReviewID,
				CreateAt:            now,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// List returns the review's comments oldest-first. Visibility follows the
// review itself: drafts have no comments, published reviews are readable by
// the participants and staff.
func (s *CommentService) List(reviewID, viewerID uint, viewerRole int) ([]models.Comment, error) {
	var review models.Review
	if err := s.db.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Review not found")
		}
		return nil, err
	}

	if !review.IsPublished() {
		return nil, NewInvalidStateError("Review is not published")
	}

	staff := viewerRole == models.RoleAdmin || viewerRole == models.RoleSuperadmin
	if !staff && viewerID != review.CoachID {
		var submission models.Submission
		if err := s.db.Where("submission_id = ?", review.SubmissionID).First(&submission).Error; err != nil {
			return nil, err
		}
		if submission.AthleteID != viewerID {
			return nil, NewPermissionError("You do not have access to this review")
		}
	}

	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("review_id = ? AND deleted_at IS NULL", reviewID).
		Order("created_at ASC, comment_id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete soft-deletes a comment. Only admins moderate comments.
func (s *CommentService) Delete(commentID, actorID uint, actorRole int) error {
	if actorRole != models.RoleAdmin && actorRole != models.RoleSuperadmin {
		return NewPermissionError("Only admins may delete comments")
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("comment_id = ? AND deleted_at IS NULL", commentID).
			Update("deleted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NewNotFoundError("Comment not found")
		}

		entityID := commentID
		audit := models.AuditLog{
			UserID:      actorID,
			Action:      "delete_comment",
			EntityType:  "comment",
			EntityID:    &entityID,
			Description: strPtr("Comment removed by moderator"),
			CreatedAt:   now,
		}
		return tx.Create(&audit).Error
	})
}
