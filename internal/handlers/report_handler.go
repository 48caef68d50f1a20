package handlers

import (
	"strings"
	"time"

	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/dto"
	"github.com/findmypaw/backend/internal/models"
	"github.com/findmypaw/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reports        *services.ReportService
	scan           *services.ScanService
	maxUploadBytes int64
	now            func() time.Time
}

func NewReportHandler(reports *services.ReportService, scan *services.ScanService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{reports: reports, scan: scan, maxUploadBytes: maxUploadBytes, now: time.Now}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	var form dto.CreateReportForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "Invalid form body")
	}

	in := services.CreateReportInput{
		Variant:  models.ReportVariant(form.Variant),
		Species:  form.Species,
		Location: form.Location,
		Breed:    form.Breed,
		Color:    form.Color,
		Gender:   form.Gender,
		Age:      form.Age,
		Remark:   form.Remark,
	}
	if d := strings.TrimSpace(form.EventDate); d != "" {
		in.EventDate, err = time.Parse(dto.DateLayout, d)
		if err != nil {
			return respondError(c, &services.ValidationError{Field: "event_date", Message: "must be a date in YYYY-MM-DD format"})
		}
	}

	in.Image, err = readUpload(c, "image", h.maxUploadBytes)
	if err != nil {
		return respondError(c, err)
	}

	report, err := h.reports.Create(c.UserContext(), a, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewReportResponse(report, a.ID, h.now()))
}

func (h *ReportHandler) Browse(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	f := services.BrowseFilter{
		Variant:      models.ReportVariant(strings.ToLower(c.Query("variant", string(models.VariantMissing)))),
		Location:     c.Query("location"),
		Species:      c.Query("species"),
		ExcludeOwner: c.QueryBool("exclude_mine", false),
		Limit:        c.QueryInt("limit", 0),
		Offset:       c.QueryInt("offset", 0),
	}

	reports, err := h.reports.Browse(c.UserContext(), a, f)
	if err != nil {
		return respondError(c, err)
	}

	resp := h.list(reports, a.ID)
	resp.Limit, resp.Offset = f.Page()
	return c.JSON(resp)
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	reports, err := h.reports.ListOwned(c.UserContext(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.list(reports, a.ID))
}

func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.Stats(c.UserContext(), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ReportStatsResponse{
		Location:       stats.Location,
		Rescued:        stats.Rescued,
		Missing:        stats.Missing,
		OverallMissing: stats.OverallMissing,
		Dogs:           stats.Dogs,
		Cats:           stats.Cats,
	})
}

func (h *ReportHandler) Scan(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	reports, err := h.scan.Scan(c.UserContext(), services.ScanQuery{
		Species:  c.Query("species"),
		Location: c.Query("location"),
		Breed:    c.Query("breed"),
		Gender:   c.Query("gender"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.list(reports, a.ID))
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	report, err := h.reports.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReportResponse(report, a.ID, h.now()))
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	a, err := actor.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := h.reports.Delete(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReportHandler) list(reports []models.Report, viewer uuid.UUID) dto.ReportListResponse {
	now := h.now()
	data := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		data[i] = dto.NewReportResponse(&reports[i], viewer, now)
	}
	return dto.ReportListResponse{Data: data}
}
