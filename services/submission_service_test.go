package services

import (
	"testing"

	"coaching-platform-api/models"
)

func TestCreateSubmissionStartsPendingWithoutCoach(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)

	svc := NewSubmissionService(db, events)
	submission, err := svc.Create(athlete.UserID, "https://cdn.example.com/clip1.mp4", "guard-pass")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if submission.Status != models.SubmissionStatusPending {
		t.Fatalf("expected status pending, got %s", submission.Status)
	}
	if submission.CoachID != nil {
		t.Fatalf("expected coach_id to be unset on a pending submission, got %d", *submission.CoachID)
	}
	if submission.SubmissionNumber == "" {
		t.Fatal("expected a submission number to be generated")
	}
	if submission.CreatedAt.IsZero() || submission.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestCreateSubmissionValidation(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	svc := NewSubmissionService(db, events)

	cases := []struct {
		name     string
		mediaRef string
		skillTag string
	}{
		{"empty media ref", "", "guard-pass"},
		{"empty skill tag", "https://cdn.example.com/clip1.mp4", ""},
		{"malformed skill tag", "https://cdn.example.com/clip1.mp4", "Guard Pass"},
		{"unknown skill tag", "https://cdn.example.com/clip1.mp4", "no-such-skill"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(athlete.UserID, tc.mediaRef, tc.skillTag)
			if !IsCode(err, CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateSubmissionAppearsInUnclaimedQueue(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)

	first := createPendingSubmission(t, db, events, athlete.UserID)
	second := createPendingSubmission(t, db, events, athlete.UserID)

	queue := NewQueueService(db)
	pending, err := queue.UnclaimedQueue("")
	if err != nil {
		t.Fatalf("UnclaimedQueue returned error: %v", err)
	}

	if len(pending) != 2 {
		t.Fatalf("expected 2 pending submissions, got %d", len(pending))
	}
	// FIFO: oldest first.
	if pending[0].SubmissionID != first.SubmissionID || pending[1].SubmissionID != second.SubmissionID {
		t.Fatalf("expected oldest-first ordering, got [%d %d]", pending[0].SubmissionID, pending[1].SubmissionID)
	}
}

func TestUnclaimedQueueSkillFilter(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	svc := NewSubmissionService(db, events)

	if _, err := svc.Create(athlete.UserID, "https://cdn.example.com/a.mp4", "guard-pass"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	takedown, err := svc.Create(athlete.UserID, "https://cdn.example.com/b.mp4", "takedown")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	queue := NewQueueService(db)
	filtered, err := queue.UnclaimedQueue("takedown")
	if err != nil {
		t.Fatalf("UnclaimedQueue returned error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SubmissionID != takedown.SubmissionID {
		t.Fatalf("expected only the takedown submission, got %d rows", len(filtered))
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db, NewQueueEventHub())

	_, err := svc.Get(9999)
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListByAthleteCursorPagination(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	other := seedUser(t, db, models.RoleAthlete)

	var created []uint
	for i := 0; i < 5; i++ {
		submission := createPendingSubmission(t, db, events, athlete.UserID)
		created = append(created, submission.SubmissionID)
	}
	createPendingSubmission(t, db, events, other.UserID)

	svc := NewSubmissionService(db, events)

	firstPage, err := svc.ListByAthlete(athlete.UserID, "", 2)
	if err != nil {
		t.Fatalf("ListByAthlete returned error: %v", err)
	}
	if len(firstPage.Submissions) != 2 || !firstPage.HasMore || firstPage.NextCursor == "" {
		t.Fatalf("unexpected first page: %d rows, has_more=%v", len(firstPage.Submissions), firstPage.HasMore)
	}

	// Newest first.
	if firstPage.Submissions[0].SubmissionID != created[4] || firstPage.Submissions[1].SubmissionID != created[3] {
		t.Fatalf("unexpected first page order: [%d %d]",
			firstPage.Submissions[0].SubmissionID, firstPage.Submissions[1].SubmissionID)
	}

	var seen []uint
	for _, s := range firstPage.Submissions {
		seen = append(seen, s.SubmissionID)
	}

	cursor := firstPage.NextCursor
	for cursor != "" {
		page, err := svc.ListByAthlete(athlete.UserID, cursor, 2)
		if err != nil {
			t.Fatalf("ListByAthlete with cursor returned error: %v", err)
		}
		for _, s := range page.Submissions {
			seen = append(seen, s.SubmissionID)
		}
		cursor = page.NextCursor
	}

	if len(seen) != 5 {
		t.Fatalf("expected 5 submissions across pages, got %d", len(seen))
	}
	for i := 0; i < 5; i++ {
		if seen[i] != created[4-i] {
			t.Fatalf("unexpected pagination order at %d: got %d, want %d", i, seen[i], created[4-i])
		}
	}
}

func TestListRejectsGarbageCursor(t *testing.T) {
	db := newTestDB(t)
	athlete := seedUser(t, db, models.RoleAthlete)
	svc := NewSubmissionService(db, NewQueueEventHub())

	_, err := svc.ListByAthlete(athlete.UserID, "not-a-cursor!!", 10)
	if !IsCode(err, CodeValidation) {
		t.Fatalf("expected validation error for garbage cursor, got %v", err)
	}
}

func TestListByCoachReturnsClaims(t *testing.T) {
	db := newTestDB(t)
	events := NewQueueEventHub()
	athlete := seedUser(t, db, models.RoleAthlete)
	coach := seedUser(t, db, models.RoleCoach)

	submission := createPendingSubmission(t, db, events, athlete.UserID)
	createPendingSubmission(t, db, events, athlete.UserID)

	workflow := newWorkflow(db, events)
	if _, err := workflow.Claim(submission.SubmissionID, coach.UserID, AuditMeta{}); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	svc := NewSubmissionService(db, events)
	page, err := svc.ListByCoach(coach.UserID, "", 10)
	if err != nil {
		t.Fatalf("ListByCoach returned error: %v", err)
	}
	if len(page.Submissions) != 1 || page.Submissions[0].SubmissionID != submission.SubmissionID {
		t.Fatalf("expected the claimed submission only, got %d rows", len(page.Submissions))
	}
}
