package models

import "time"

// Submission statuses. The workflow is:
// pending -> claimed -> completed, with declined terminal from either
// non-terminal state and claimed -> pending when a coach releases a claim.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusClaimed   = "claimed"
	SubmissionStatusCompleted = "completed"
	SubmissionStatusDeclined  = "declined"
)

// Submission is an athlete's uploaded video clip awaiting coach review.
// CoachID stays NULL while the submission is pending; it is set by a
// successful claim and cleared again only when the claim is released.
type Submission struct {
	SubmissionID     uint       `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string     `gorm:"column:submission_number;unique" json:"submission_number"`
	AthleteID        uint       `gorm:"column:athlete_id" json:"athlete_id"`
	CoachID          *uint      `gorm:"column:coach_id" json:"coach_id,omitempty"`
	MediaRef         string     `gorm:"column:media_ref" json:"media_ref"`
	SkillTag         string     `gorm:"column:skill_tag" json:"skill_tag"`
	Status           string     `gorm:"column:status" json:"status"`
	DeclineReason    *string    `gorm:"column:decline_reason" json:"decline_reason,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt        *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Athlete *User   `gorm:"foreignKey:AthleteID" json:"athlete,omitempty"`
	Coach   *User   `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
	Review  *Review `gorm:"foreignKey:SubmissionID" json:"review,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsTerminal reports whether the submission can no longer change state.
func (s *Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusDeclined
}
