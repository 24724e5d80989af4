package services

import (
	"testing"

	"coaching-platform-api/models"

	"gorm.io/gorm"
)

// publishReviewFor walks a submission through claim, draft and publish and
// returns the published review.
func publishReviewFor(t *testing.T, db *gorm.DB, events *QueueEventHub, submissionID, coachID uint) *models.Review {
	t.Helper()
	workflow := newWorkflow(db, events)
	if _, err := workflow.Claim(submissionID, coachID, AuditMeta{}); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if _, err := workflow.SaveDraftReview(submissionID, coachID, draftWithOneScore()); err != nil {
		t.Fatalf("SaveDraftReview returned error: %v", err)
	}
	review, err := workflow.PublishReview(submissionID, coachID, AuditMeta{})
	if err != nil {
		t.Fatalf("PublishReview returned error: %v", err)
	}
	return review
}

func TestCommentOnDraftFails(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)
	submission := createPendingSubmission(t, db, events, athlete.UserID)

	workflow := newWorkflow(db, events)
	if _, err := workflow.Claim(submission.SubmissionID, coach.UserID, AuditMeta{}); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	draft, err := workflow.SaveDraftReview(submission.SubmissionID, coach.UserID, draftWithOneScore())
	if err != nil {
		t.Fatalf("SaveDraftReview returned error: %v", err)
	}

	comments := NewCommentService(db)
	_, err = comments.Create(draft.ReviewID, coach.UserID, models.RoleCoach, "first pass notes")
	if !IsCode(err, CodeInvalidState) {
		t.Fatalf("expected invalid_state commenting on a draft, got %v", err)
	}
}

func TestCommentNotifiesCounterpart(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)
	submission := createPendingSubmission(t, db, events, athlete.UserID)
	review := publishReviewFor(t, db, events, submission.SubmissionID, coach.UserID)

	comments := NewCommentService(db)
	if _, err := comments.Create(review.ReviewID, coach.UserID, models.RoleCoach, "Let me know if the drill helps."); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var notification models.Notification
	err := db.Where("user_id = ? AND type = ?", athlete.UserID, models.NotificationTypeCommentAdded).
		First(&notification).Error
	if err != nil {
		t.Fatalf("expected a comment notification for the athlete: %v", err)
	}

	// Athlete replies, coach gets notified.
	if _, err := comments.Create(review.ReviewID, athlete.UserID, models.RoleAthlete, "It did, thanks!"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	var coachNotification models.Notification
	err = db.Where("user_id = ? AND type = ?", coach.UserID, models.NotificationTypeCommentAdded).
		First(&coachNotification).Error
	if err != nil {
		t.Fatalf("expected a comment notification for the coach: %v", err)
	}
}

func TestCommentByOutsiderFails(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	outsider := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)
	submission := createPendingSubmission(t, db, events, athlete.UserID)
	review := publishReviewFor(t, db, events, submission.SubmissionID, coach.UserID)

	comments := NewCommentService(db)
	_, err := comments.Create(review.ReviewID, outsider.UserID, models.RoleAthlete, "nice clip")
	if !IsCode(err, CodePermission) {
		t.Fatalf("expected permission error for outsider, got %v", err)
	}
}

func TestCommentListOrderAndVisibility(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	outsider := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)
	submission := createPendingSubmission(t, db, events, athlete.UserID)
	review := publishReviewFor(t, db, events, submission.SubmissionID, coach.UserID)

	comments := NewCommentService(db)
	first, err := comments.Create(review.ReviewID, coach.UserID, models.RoleCoach, "first")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := comments.Create(review.ReviewID, athlete.UserID, models.RoleAthlete, "second")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	listed, err := comments.List(review.ReviewID, athlete.UserID, models.RoleAthlete)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(listed) != 2 || listed[0].CommentID != first.CommentID || listed[1].CommentID != second.CommentID {
		t.Fatalf("expected oldest-first ordering, got %d comments", len(listed))
	}

	if _, err := comments.List(review.ReviewID, outsider.UserID, models.RoleAthlete); !IsCode(err, CodePermission) {
		t.Fatalf("expected permission error for outsider, got %v", err)
	}
}

func TestCommentDeleteRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)
	admin := seedUser(t, db, models.RoleAdmin)
	submission := createPendingSubmission(t, db, events, athlete.UserID)
	review := publishReviewFor(t, db, events, submission.SubmissionID, coach.UserID)

	comments := NewCommentService(db)
	comment, err := comments.Create(review.ReviewID, coach.UserID, models.RoleCoach, "to be moderated")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := comments.Delete(comment.CommentID, coach.UserID, models.RoleCoach); !IsCode(err, CodePermission) {
		t.Fatalf("expected permission error for coach, got %v", err)
	}

	if err := comments.Delete(comment.CommentID, admin.UserID, models.RoleAdmin); err != nil {
		t.Fatalf("admin Delete returned error: %v", err)
	}

	listed, err := comments.List(review.ReviewID, athlete.UserID, models.RoleAthlete)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected deleted comment hidden from listing, got %d", len(listed))
	}

	// Soft-deleted rows cannot be deleted again.
	if err := comments.Delete(comment.CommentID, admin.UserID, models.RoleAdmin); !IsCode(err, CodeNotFound) {
		t.Fatalf("expected not_found on second delete, got %v", err)
	}
}
