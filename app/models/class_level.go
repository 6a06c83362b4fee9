package models

import "time"

// ClassLevel is one entry in a school's ordered class list. Position defines
// the sequence used for "from class X to class Y" fee rule ranges.
type ClassLevel struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	SchoolID  string     `json:"school_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Name      string     `json:"name" gorm:"not null" validate:"required"`
	Position  int        `json:"position" gorm:"not null" validate:"gte=0"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	School *School `json:"school,omitempty" gorm:"foreignKey:SchoolID;references:ID"`
}
