// internal/model/studylog.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Study log type tags. Free-form labels for display only; every type earns
// XP by the same formula.
const (
	StudyTypeTheory    = "theory"
	StudyTypeQuestions = "questions"
	StudyTypeReview    = "review"
)

// StudyLog is one completed study session. Immutable once created; removed
// only by a full account reset. SubjectID is a weak reference: a dangling id
// renders as "unknown subject" instead of failing.
type StudyLog struct {
	LogID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"log_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SubjectID uuid.UUID `gorm:"type:uuid;index" json:"subject_id"`
	StudyType string    `gorm:"not null;default:theory" json:"study_type"`

	Hours   int `gorm:"not null;default:0" json:"hours"`
	Minutes int `gorm:"not null;default:0" json:"minutes"`
	Seconds int `gorm:"not null;default:0" json:"seconds"`

	Pages   int `gorm:"not null;default:0" json:"pages"`
	Correct int `gorm:"not null;default:0" json:"correct"`
	Wrong   int `gorm:"not null;default:0" json:"wrong"`
	Blank   int `gorm:"not null;default:0" json:"blank"`

	StudiedAt time.Time `gorm:"not null;index" json:"studied_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (StudyLog) TableName() string {
	return "study_logs"
}

type PostStudyLogRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	StudyType string `json:"study_type" validate:"omitempty,max=30"`
	Hours     int    `json:"hours" validate:"gte=0"`
	Minutes   int    `json:"minutes" validate:"gte=0,lte=59"`
	Seconds   int    `json:"seconds" validate:"gte=0,lte=59"`
	Pages     int    `json:"pages" validate:"gte=0"`
	Correct   int    `json:"correct" validate:"gte=0"`
	Wrong     int    `json:"wrong" validate:"gte=0"`
	Blank     int    `json:"blank" validate:"gte=0"`
	// StudiedAt defaults to now when omitted (RFC 3339).
	StudiedAt *time.Time `json:"studied_at,omitempty"`
}
