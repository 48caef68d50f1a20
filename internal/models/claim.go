package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimAccepted ClaimStatus = "accepted"
	ClaimRejected ClaimStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimAccepted || s == ClaimRejected
}

// ReportRef points at exactly one report of a known variant. The zero value
// is invalid; build one with MissingRef or FoundRef.
type ReportRef struct {
	variant ReportVariant
	id      uuid.UUID
}

func MissingRef(id uuid.UUID) ReportRef {
	return ReportRef{variant: VariantMissing, id: id}
}

func FoundRef(id uuid.UUID) ReportRef {
	return ReportRef{variant: VariantFound, id: id}
}

// NewReportRef builds a ref from an untrusted variant string.
func NewReportRef(variant ReportVariant, id uuid.UUID) (ReportRef, bool) {
	switch variant {
	case VariantMissing:
		return MissingRef(id), id != uuid.Nil
	case VariantFound:
		return FoundRef(id), id != uuid.Nil
	}
	return ReportRef{}, false
}

func (r ReportRef) Variant() ReportVariant { return r.variant }
func (r ReportRef) ID() uuid.UUID          { return r.id }

func (r ReportRef) Valid() bool {
	return r.variant.Valid() && r.id != uuid.Nil
}

// Claim asserts that a report matches a pet the claimer owns or found.
type Claim struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"report_id"`
	ReportVariant ReportVariant `gorm:"size:10;not null" json:"report_variant"`
	ClaimerID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"claimer_id"`
	ImageURL      string        `gorm:"type:text;not null" json:"image_url"`
	ImageKey      string        `gorm:"size:255" json:"-"`
	Remark        string        `gorm:"type:text;not null" json:"remark"`
	Status        ClaimStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Claim) TableName() string {
	return "claims"
}

// Ref returns the report this claim targets.
func (c *Claim) Ref() ReportRef {
	return ReportRef{variant: c.ReportVariant, id: c.ReportID}
}

// SetRef stores ref in the claim's columns.
func (c *Claim) SetRef(ref ReportRef) {
	c.ReportID = ref.id
	c.ReportVariant = ref.variant
}
