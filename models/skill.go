package models

import "time"

// Skill is an entry in the skill catalog. Submission skill tags must match
// the code of an active skill.
type Skill struct {
	SkillID   uint       `gorm:"primaryKey;column:skill_id" json:"skill_id"`
	Code      string     `gorm:"column:code;unique" json:"code"`
	Name      string     `gorm:"column:name" json:"name"`
	Category  *string    `gorm:"column:category" json:"category,omitempty"`
	IsActive  bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Skill) TableName() string {
	return "skills"
}
