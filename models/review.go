package models

import "time"

// Review statuses.
const (
	ReviewStatusDraft     = "draft"
	ReviewStatusPublished = "published"
)

// Review is a coach's critique of a single submission. Drafts are mutable by
// the authoring coach only and invisible to the athlete; published reviews
// are immutable.
type Review struct {
	ReviewID     uint       `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID uint       `gorm:"column:submission_id;unique" json:"submission_id"`
	CoachID      uint       `gorm:"column:coach_id" json:"coach_id"`
	Status       string     `gorm:"column:status" json:"status"`
	Summary      *string    `gorm:"column:summary" json:"summary,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`

	// Relations
	Coach       *User                 `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
	Scores      []RubricScore         `gorm:"foreignKey:ReviewID" json:"scores,omitempty"`
	Annotations []Annotation          `gorm:"foreignKey:ReviewID" json:"annotations,omitempty"`
	Drills      []DrillRecommendation `gorm:"foreignKey:ReviewID" json:"drills,omitempty"`
}

// RubricScore is one graded criterion within a review.
type RubricScore struct {
	ScoreID      uint    `gorm:"primaryKey;column:score_id" json:"score_id"`
	ReviewID     uint    `gorm:"column:review_id" json:"review_id"`
	Criterion    string  `gorm:"column:criterion" json:"criterion"`
	Score        float64 `gorm:"column:score" json:"score"`
	Comment      *string `gorm:"column:comment" json:"comment,omitempty"`
	DisplayOrder int     `gorm:"column:display_order" json:"display_order"`
}

// Annotation is a timecoded note against the submission's media.
type Annotation struct {
	AnnotationID uint   `gorm:"primaryKey;column:annotation_id" json:"annotation_id"`
	ReviewID     uint   `gorm:"column:review_id" json:"review_id"`
	TimecodeMs   int    `gorm:"column:timecode_ms" json:"timecode_ms"`
	Comment      string `gorm:"column:comment" json:"comment"`
	DisplayOrder int    `gorm:"column:display_order" json:"display_order"`
}

// DrillRecommendation is an optional follow-up drill suggested by the coach.
type DrillRecommendation struct {
	DrillID      uint    `gorm:"primaryKey;column:drill_id" json:"drill_id"`
	ReviewID     uint    `gorm:"column:review_id" json:"review_id"`
	Title        string  `gorm:"column:title" json:"title"`
	Notes        *string `gorm:"column:notes" json:"notes,omitempty"`
	DisplayOrder int     `gorm:"column:display_order" json:"display_order"`
}

// TableName overrides
func (Review) TableName() string {
	return "reviews"
}

func (RubricScore) TableName() string {
	return "review_rubric_scores"
}

func (Annotation) TableName() string {
	return "review_annotations"
}

func (DrillRecommendation) TableName() string {
	return "review_drill_recommendations"
}

// IsPublished reports whether the review is visible to the athlete.
func (r *Review) IsPublished() bool {
	return r.Status == ReviewStatusPublished
}
