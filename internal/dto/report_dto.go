package dto

import (
	"time"

	"github.com/findmypaw/backend/internal/models"
	"github.com/google/uuid"
)

// CreateReportForm is the multipart form behind POST /api/reports. The
// image travels as the "image" file part.
type CreateReportForm struct {
	Variant   string `form:"variant"`
	Species   string `form:"species"`
	Location  string `form:"location"`
	EventDate string `form:"event_date"`
	Breed     string `form:"breed"`
	Color     string `form:"color"`
	Gender    string `form:"gender"`
	Age       string `form:"age"`
	Remark    string `form:"remark"`
}

type ReportResponse struct {
	ID        uuid.UUID            `json:"id"`
	OwnerID   uuid.UUID            `json:"owner_id"`
	Variant   models.ReportVariant `json:"variant"`
	ImageURL  string               `json:"image_url"`
	Species   string               `json:"species"`
	Location  string               `json:"location"`
	Breed     string               `json:"breed,omitempty"`
	Color     string               `json:"color,omitempty"`
	Gender    string               `json:"gender,omitempty"`
	Age       string               `json:"age,omitempty"`
	Remark    string               `json:"remark,omitempty"`
	EventDate string               `json:"event_date"`
	Rescued   bool                 `json:"rescued"`
	IsMine    bool                 `json:"is_mine"`
	DaysAgo   int                  `json:"days_ago"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewReportResponse renders r for viewer at time now.
func NewReportResponse(r *models.Report, viewer uuid.UUID, now time.Time) ReportResponse {
	return ReportResponse{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Variant:   r.Variant,
		ImageURL:  r.ImageURL,
		Species:   r.Species,
		Location:  r.Location,
		Breed:     r.Breed,
		Color:     r.Color,
		Gender:    r.Gender,
		Age:       r.Age,
		Remark:    r.Remark,
		EventDate: r.EventDate.Format(DateLayout),
		Rescued:   r.Rescued,
		IsMine:    r.OwnerID == viewer,
		DaysAgo:   r.DaysAgo(now),
		CreatedAt: r.CreatedAt,
	}
}

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

type ReportListResponse struct {
	Data   []ReportResponse `json:"data"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

type ReportStatsResponse struct {
	Location       string `json:"location,omitempty"`
	Rescued        int64  `json:"rescued"`
	Missing        int64  `json:"missing"`
	OverallMissing int64  `json:"overall_missing"`
	Dogs           int64  `json:"dogs"`
	Cats           int64  `json:"cats"`
}
