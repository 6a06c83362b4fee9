package models

import "time"

// Student represents a learner enrolled at a school.
type Student struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	SchoolID     string     `json:"school_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentNo    string     `json:"student_no" gorm:"uniqueIndex;not null" validate:"required"`
	FirstName    string     `json:"first_name" gorm:"not null" validate:"required"`
	LastName     string     `json:"last_name" gorm:"not null" validate:"required"`
	Gender       Gender     `json:"gender,omitempty" gorm:"type:varchar(10)"`
	ClassLevelID string     `json:"class_level_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// Populated by joins, not stored on the students table.
	ClassLevelName string `json:"class_level_name,omitempty" gorm:"-"`

	School     *School     `json:"school,omitempty" gorm:"foreignKey:SchoolID;references:ID"`
	ClassLevel *ClassLevel `json:"class_level,omitempty" gorm:"foreignKey:ClassLevelID;references:ID"`
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
