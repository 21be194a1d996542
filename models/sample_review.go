package models

import "time"

// SampleReview is an audit record for a reviewer decision on a sample.
type SampleReview struct {
	ReviewID   int          `gorm:"primaryKey;autoIncrement;column:review_id" json:"review_id"`
	SampleID   string       `gorm:"column:sample_id" json:"sample_id"`
	ReviewerID int          `gorm:"column:reviewer_id" json:"reviewer_id"`
	Decision   SampleStatus `gorm:"column:decision" json:"decision"`
	ReviewedAt time.Time    `gorm:"column:reviewed_at" json:"reviewed_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for SampleReview.
func (SampleReview) TableName() string {
	return "sample_reviews"
}
