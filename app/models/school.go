package models

import "time"

// School represents a tenant. Every student, rule, transaction and credit is
// scoped to exactly one school.
type School struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Name      string     `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Code      string     `json:"code" gorm:"uniqueIndex;not null" validate:"required"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	ClassLevels []*ClassLevel `json:"class_levels,omitempty" gorm:"foreignKey:SchoolID;references:ID"`
	Students    []*Student    `json:"students,omitempty" gorm:"foreignKey:SchoolID;references:ID"`
}
