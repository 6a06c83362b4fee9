package models

import "time"

// FeeRule bills every student whose class falls within [FromClass, ToClass]
// (inclusive, order-independent) Amount for Term of AcademicYear.
//
// Rules are editable in place with no versioning; editing a rule retroactively
// changes historical balance computations. That is an accepted tradeoff.
type FeeRule struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	SchoolID     string     `json:"school_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYear string     `json:"academic_year" gorm:"not null;index" validate:"required"`
	Term         Term       `json:"term" gorm:"not null;type:varchar(10)" validate:"required"`
	FromClass    string     `json:"from_class" gorm:"not null" validate:"required"`
	ToClass      string     `json:"to_class" gorm:"not null" validate:"required"`
	Amount       float64    `json:"amount" gorm:"not null;type:numeric" validate:"gte=0"`
	CreatedBy    string     `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	School *School `json:"school,omitempty" gorm:"foreignKey:SchoolID;references:ID"`
}
