package models

import "time"

// SubmissionStatusHistory records every submission status transition.
type SubmissionStatusHistory struct {
	HistoryID    uint      `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID uint      `gorm:"column:submission_id" json:"submission_id"`
	OldStatus    *string   `gorm:"column:old_status" json:"old_status,omitempty"`
	NewStatus    string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy    uint      `gorm:"column:changed_by" json:"changed_by"`
	Reason       *string   `gorm:"column:reason" json:"reason,omitempty"`
	Notes        *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SubmissionStatusHistory) TableName() string {
	return "submission_status_history"
}
