package models

import "time"

// Credit is the audit record written when an overpayment is carried across an
// academic-year boundary. The money itself moves via the paired Transaction in
// the target year; AppliedTo is an informational label, not a foreign key.
type Credit struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID    string    `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	SchoolID     string    `json:"school_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYear string    `json:"academic_year" gorm:"not null;index" validate:"required"`
	Term         Term      `json:"term" gorm:"not null;type:varchar(10)" validate:"required"`
	Amount       float64   `json:"amount" gorm:"not null;type:numeric" validate:"gte=0"`
	Source       string    `json:"source" gorm:"not null"`
	Note         string    `json:"note,omitempty" gorm:"type:text"`
	AppliedTo    string    `json:"applied_to,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
}
