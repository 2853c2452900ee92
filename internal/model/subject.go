// internal/model/subject.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subject is one discipline inside a user's study cycle.
type Subject struct {
	SubjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"subject_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `json:"color"`
	// CyclePosition orders the subject inside the study cycle.
	CyclePosition int            `gorm:"not null;default:0" json:"cycle_position"`
	Weight        int            `gorm:"not null;default:1" json:"weight"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Subject) TableName() string {
	return "subjects"
}

type PostSubjectRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	Color         string `json:"color" validate:"omitempty,max=20"`
	CyclePosition int    `json:"cycle_position" validate:"gte=0"`
	Weight        int    `json:"weight" validate:"gte=1,lte=10"`
}

type PatchSubjectRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color         *string `json:"color,omitempty" validate:"omitempty,max=20"`
	CyclePosition *int    `json:"cycle_position,omitempty" validate:"omitempty,gte=0"`
	Weight        *int    `json:"weight,omitempty" validate:"omitempty,gte=1,lte=10"`
}
