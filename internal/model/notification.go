// internal/model/notification.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationWarning = "warning"
	NotificationInfo    = "info"
)

// Notification is an in-app message for the user (e.g. an XP removal
// warning). Fire-and-forget from the producer's perspective.
type Notification struct {
	NotificationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"notification_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Type           string    `gorm:"not null;default:info" json:"type"`
	Message        string    `gorm:"not null" json:"message"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
