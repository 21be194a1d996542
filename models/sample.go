package models

import "time"

// SampleStatus is the review lifecycle state of a handwriting sample.
type SampleStatus string

const (
	StatusPending  SampleStatus = "pending"
	StatusApproved SampleStatus = "approved"
	StatusRejected SampleStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s SampleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s SampleStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Sample represents one contributed handwriting record (image + transcription).
// The image bytes live in object storage; only the key is kept here.
type Sample struct {
	SampleID      string       `gorm:"primaryKey;column:sample_id" json:"id"`
	ImageKey      string       `gorm:"column:image_key" json:"image_key"`
	OriginalText  *string      `gorm:"column:original_text" json:"original_text,omitempty"`
	CorrectedText string       `gorm:"column:corrected_text" json:"corrected_text"`
	Status        SampleStatus `gorm:"column:status" json:"status"`
	ContributorID int          `gorm:"column:contributor_id" json:"contributor_id"`
	ReviewerID    *int         `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Contributor *User `gorm:"foreignKey:ContributorID" json:"contributor,omitempty"`
	Reviewer    *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for Sample.
func (Sample) TableName() string {
	return "handwriting_samples"
}
