package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const NotificationClaimFiled NotificationKind = "claim_filed"

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is an outbox row written in the same transaction as the
// event it announces and delivered later by the dispatcher.
type Notification struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        NotificationKind   `gorm:"size:30;not null" json:"kind"`
	RecipientID uuid.UUID          `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ReportID    uuid.UUID          `gorm:"type:uuid;not null" json:"report_id"`
	ClaimID     uuid.UUID          `gorm:"type:uuid;not null" json:"claim_id"`
	ImageURL    string             `gorm:"type:text" json:"image_url"`
	Remark      string             `gorm:"type:text" json:"remark"`
	Status      NotificationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Attempts    int                `gorm:"not null;default:0" json:"attempts"`
	LastError   string             `gorm:"type:text" json:"last_error,omitempty"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
