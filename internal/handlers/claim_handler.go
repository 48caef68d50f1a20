package handlers

import (
	"strings"

	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/dto"
	"github.com/findmypaw/backend/internal/models"
	"github.com/findmypaw/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claims         *services.ClaimService
	maxUploadBytes int64
}

func NewClaimHandler(claims *services.ClaimService, maxUploadBytes int64) *ClaimHandler {
	return &ClaimHandler{claims: claims, maxUploadBytes: maxUploadBytes}
}

// File handles POST /api/reports/:id/claims.
func (h *ClaimHandler) File(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var form dto.FileClaimForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "Invalid form body")
	}

	variant := models.ReportVariant(strings.ToLower(strings.TrimSpace(form.ReportVariant)))
	ref, ok := models.NewReportRef(variant, reportID)
	if !ok {
		return respondError(c, &services.ValidationError{Field: "report_variant", Message: "must be one of: missing found"})
	}

	img, err := readUpload(c, "image", h.maxUploadBytes)
	if err != nil {
		return respondError(c, err)
	}

	claim, err := h.claims.File(c.UserContext(), a, services.FileClaimInput{
		Ref:    ref,
		Remark: form.Remark,
		Image:  img,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewClaimResponse(claim))
}

func (h *ClaimHandler) ListIncoming(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	claims, err := h.claims.ListIncoming(c.UserContext(), a, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(claimList(claims))
}

func (h *ClaimHandler) ListMine(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	claims, err := h.claims.ListOutgoing(c.UserContext(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(claimList(claims))
}

func (h *ClaimHandler) Decide(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid claim ID")
	}

	var req dto.DecideClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	decision := models.ClaimStatus(strings.ToLower(strings.TrimSpace(req.Decision)))
	claim, err := h.claims.Decide(c.UserContext(), a, claimID, decision)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewClaimResponse(claim))
}

func claimList(claims []models.Claim) dto.ClaimListResponse {
	data := make([]dto.ClaimResponse, len(claims))
	for i := range claims {
		data[i] = dto.NewClaimResponse(&claims[i])
	}
	return dto.ClaimListResponse{Data: data}
}
