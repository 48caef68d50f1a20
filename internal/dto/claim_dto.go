package dto

import (
	"time"

	"github.com/findmypaw/backend/internal/models"
	"github.com/google/uuid"
)

// FileClaimForm is the multipart form behind POST /api/reports/:id/claims.
// The proof photo travels as the "image" file part.
type FileClaimForm struct {
	ReportVariant string `form:"report_variant"`
	Remark        string `form:"remark"`
}

type DecideClaimRequest struct {
	Decision string `json:"decision"`
}

type ClaimResponse struct {
	ID            uuid.UUID            `json:"id"`
	ReportID      uuid.UUID            `json:"report_id"`
	ReportVariant models.ReportVariant `json:"report_variant"`
	ClaimerID     uuid.UUID            `json:"claimer_id"`
	ImageURL      string               `json:"image_url"`
	Remark        string               `json:"remark"`
	Status        models.ClaimStatus   `json:"status"`
	DecidedAt     *time.Time           `json:"decided_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func NewClaimResponse(c *models.Claim) ClaimResponse {
	return ClaimResponse{
		ID:            c.ID,
		ReportID:      c.ReportID,
		ReportVariant: c.ReportVariant,
		ClaimerID:     c.ClaimerID,
		ImageURL:      c.ImageURL,
		Remark:        c.Remark,
		Status:        c.Status,
		DecidedAt:     c.DecidedAt,
		CreatedAt:     c.CreatedAt,
	}
}

type ClaimListResponse struct {
	Data []ClaimResponse `json:"data"`
}
