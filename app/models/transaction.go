package models

import "time"

// Transaction is one append-only monetary event on a student's fee ledger.
// Rows are never updated or deleted; the paid total for a
// (student, academic year, term) key is the sum of all matching rows.
type Transaction struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID    string          `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	SchoolID     string          `json:"school_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYear string          `json:"academic_year" gorm:"not null;index" validate:"required"`
	Term         Term            `json:"term" gorm:"not null;type:varchar(10)" validate:"required"`
	Amount       float64         `json:"amount" gorm:"not null;type:numeric"`
	Kind         TransactionKind `json:"kind" gorm:"not null;type:varchar(20)" validate:"required"`
	Method       PaymentMethod   `json:"method,omitempty" gorm:"type:varchar(20)"`
	Note         string          `json:"note,omitempty" gorm:"type:text"`
	HandledBy    string          `json:"handled_by,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
}
