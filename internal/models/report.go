package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportVariant tells a missing-pet posting apart from a found-pet posting.
type ReportVariant string

const (
	VariantMissing ReportVariant = "missing"
	VariantFound   ReportVariant = "found"
)

func (v ReportVariant) Valid() bool {
	return v == VariantMissing || v == VariantFound
}

// Report is a missing or found animal posting. OwnerID never changes after
// creation and Rescued only ever flips from false to true, through an
// accepted claim.
type Report struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Variant   ReportVariant `gorm:"size:10;not null;index" json:"variant"`
	ImageURL  string        `gorm:"type:text" json:"image_url"`
	ImageKey  string        `gorm:"size:255" json:"-"`
	Species   string        `gorm:"size:50;not null;index" json:"species"`
	Location  string        `gorm:"size:120;not null;index" json:"location"`
	Breed     string        `gorm:"size:80" json:"breed,omitempty"`
	Color     string        `gorm:"size:50" json:"color,omitempty"`
	Gender    string        `gorm:"size:20" json:"gender,omitempty"`
	Age       string        `gorm:"size:30" json:"age,omitempty"`
	Remark    string        `gorm:"type:text" json:"remark,omitempty"`
	EventDate time.Time     `gorm:"not null" json:"event_date"`
	Rescued   bool          `gorm:"not null;default:false;index" json:"rescued"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Report) TableName() string {
	return "reports"
}

// Ref returns the tagged reference claims use to point at this report.
func (r *Report) Ref() ReportRef {
	return ReportRef{variant: r.Variant, id: r.ID}
}

// DaysAgo is the whole number of days between creation and now.
func (r *Report) DaysAgo(now time.Time) int {
	d := now.Sub(r.CreatedAt)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
