package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/models"
	"github.com/findmypaw/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errNoActor = fmt.Errorf("%w: authentication required", ErrForbidden)

// ImageUpload is a photo as received from the client.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreateReportInput struct {
	Variant   models.ReportVariant `json:"variant" validate:"required,oneof=missing found"`
	Species   string               `json:"species" validate:"required,max=50"`
	Location  string               `json:"location" validate:"required,max=120"`
	EventDate time.Time            `json:"event_date" validate:"required"`
	Breed     string               `json:"breed" validate:"max=80"`
	Color     string               `json:"color" validate:"max=50"`
	Gender    string               `json:"gender" validate:"max=20"`
	Age       string               `json:"age" validate:"max=30"`
	Remark    string               `json:"remark" validate:"max=2000"`
	Image     ImageUpload          `json:"image"`
}

func (in *CreateReportInput) normalize() {
	in.Variant = models.ReportVariant(strings.ToLower(strings.TrimSpace(string(in.Variant))))
	in.Species = strings.TrimSpace(in.Species)
	in.Location = strings.TrimSpace(in.Location)
	in.Breed = strings.TrimSpace(in.Breed)
	in.Color = strings.TrimSpace(in.Color)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Age = strings.TrimSpace(in.Age)
	in.Remark = strings.TrimSpace(in.Remark)
}

// BrowseFilter selects the public feed of still-open reports.
type BrowseFilter struct {
	Variant      models.ReportVariant
	Location     string
	Species      string
	ExcludeOwner bool
	Limit        int
	Offset       int
}

const (
	defaultBrowseLimit = 20
	maxBrowseLimit     = 100
)

// Page returns the limit and offset Browse actually applies.
func (f BrowseFilter) Page() (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	switch {
	case limit <= 0:
		limit = defaultBrowseLimit
	case limit > maxBrowseLimit:
		limit = maxBrowseLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type ReportStats struct {
	Location       string
	Rescued        int64
	Missing        int64
	OverallMissing int64
	Dogs           int64
	Cats           int64
}

// ReportService is the report lifecycle manager: it creates reports with
// their photo, lists them, and deletes them on behalf of their owner.
type ReportService struct {
	db    *gorm.DB
	media storage.MediaStore
}

func NewReportService(db *gorm.DB, media storage.MediaStore) *ReportService {
	return &ReportService{db: db, media: media}
}

func (s *ReportService) Create(ctx context.Context, a actor.Actor, in CreateReportInput) (*models.Report, error) {
	if a.IsZero() {
		return nil, errNoActor
	}

	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	contentType, ext, err := checkImage(in.Image)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey(storage.PrefixReports, a.ID, ext)
	url, err := s.media.Put(ctx, key, in.Image.Data, contentType)
	if err != nil {
		slog.Error("report image upload failed", "user_id", a.ID.String(), "action", "report.create", "error", err)
		return nil, storageErr("upload report image", err)
	}

	report := &models.Report{
		ID:        uuid.New(),
		OwnerID:   a.ID,
		Variant:   in.Variant,
		ImageURL:  url,
		ImageKey:  key,
		Species:   in.Species,
		Location:  in.Location,
		Breed:     in.Breed,
		Color:     in.Color,
		Gender:    in.Gender,
		Age:       in.Age,
		Remark:    in.Remark,
		EventDate: in.EventDate,
		Rescued:   false,
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		// The uploaded image is left orphaned; nothing references it.
		slog.Error("report insert failed", "user_id", a.ID.String(), "action", "report.create", "image_key", key, "error", err)
		return nil, storageErr("insert report", err)
	}

	slog.Info("report created", "report_id", report.ID.String(), "user_id", a.ID.String(), "variant", string(report.Variant))
	return report, nil
}

func (s *ReportService) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, storageErr("load report", err)
	}
	return &report, nil
}

// Delete removes an owner's report. The row goes first; the photo is then
// removed on a best-effort basis and a failure there only gets logged.
func (s *ReportService) Delete(ctx context.Context, a actor.Actor, reportID uuid.UUID) error {
	if a.IsZero() {
		return errNoActor
	}

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return err
	}
	if report.OwnerID != a.ID {
		return ErrNotReportOwner
	}
	if report.Rescued {
		return ErrReportRescued
	}

	result := s.db.WithContext(ctx).
		Scopes(actor.OwnedBy(a.ID)).
		Where("id = ? AND rescued = ?", reportID, false).
		Delete(&models.Report{})
	if result.Error != nil {
		slog.Error("report delete failed", "report_id", reportID.String(), "user_id", a.ID.String(), "action", "report.delete", "error", result.Error)
		return storageErr("delete report", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with another delete or an accepted claim.
		return s.deleteRaceError(ctx, reportID)
	}

	if report.ImageKey != "" {
		if err := s.media.Delete(ctx, report.ImageKey); err != nil {
			slog.Warn("report image cleanup failed", "report_id", reportID.String(), "image_key", report.ImageKey, "error", err)
		}
	}

	slog.Info("report deleted", "report_id", reportID.String(), "user_id", a.ID.String())
	return nil
}

func (s *ReportService) deleteRaceError(ctx context.Context, reportID uuid.UUID) error {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return err
	}
	if report.Rescued {
		return ErrReportRescued
	}
	return ErrReportNotFound
}

// ListOwned returns every report the actor created, newest first.
func (s *ReportService) ListOwned(ctx context.Context, a actor.Actor) ([]models.Report, error) {
	if a.IsZero() {
		return nil, errNoActor
	}

	var reports []models.Report
	if err := s.db.WithContext(ctx).
		Scopes(actor.OwnedBy(a.ID)).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, storageErr("list reports", err)
	}
	return reports, nil
}

// Browse returns open reports of one variant, newest first.
func (s *ReportService) Browse(ctx context.Context, a actor.Actor, f BrowseFilter) ([]models.Report, error) {
	if !f.Variant.Valid() {
		return nil, invalid("variant", "must be one of: missing found")
	}

	f.Limit, f.Offset = f.Page()

	query := s.db.WithContext(ctx).
		Where("variant = ? AND rescued = ?", f.Variant, false)
	if loc := strings.TrimSpace(f.Location); loc != "" {
		query = query.Where("LOWER(location) = ?", strings.ToLower(loc))
	}
	if species := strings.TrimSpace(f.Species); species != "" {
		query = query.Where("LOWER(species) = ?", strings.ToLower(species))
	}
	if f.ExcludeOwner && !a.IsZero() {
		query = query.Scopes(actor.NotOwnedBy(a.ID))
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&reports).Error; err != nil {
		return nil, storageErr("browse reports", err)
	}
	return reports, nil
}

type countQuery struct {
	dst   *int64
	where string
	args  []interface{}
}

// Stats counts reports for the dashboard. With a location, Missing and
// Rescued cover that location only; OverallMissing, Dogs and Cats always
// cover every location and count open missing reports.
func (s *ReportService) Stats(ctx context.Context, location string) (*ReportStats, error) {
	location = strings.TrimSpace(location)
	loc := strings.ToLower(location)
	stats := &ReportStats{Location: location}

	const openMissing = "variant = ? AND rescued = ?"
	queries := []countQuery{
		{&stats.OverallMissing, openMissing, []interface{}{models.VariantMissing, false}},
		{&stats.Dogs, openMissing + " AND LOWER(species) = ?", []interface{}{models.VariantMissing, false, "dog"}},
		{&stats.Cats, openMissing + " AND LOWER(species) = ?", []interface{}{models.VariantMissing, false, "cat"}},
	}
	if loc != "" {
		queries = append(queries,
			countQuery{&stats.Missing, openMissing + " AND LOWER(location) = ?", []interface{}{models.VariantMissing, false, loc}},
			countQuery{&stats.Rescued, "rescued = ? AND LOWER(location) = ?", []interface{}{true, loc}},
		)
	} else {
		queries = append(queries, countQuery{&stats.Rescued, "rescued = ?", []interface{}{true}})
	}

	for _, q := range queries {
		if err := s.db.WithContext(ctx).Model(&models.Report{}).Where(q.where, q.args...).Count(q.dst).Error; err != nil {
			return nil, storageErr("count reports", err)
		}
	}
	if loc == "" {
		stats.Missing = stats.OverallMissing
	}
	return stats, nil
}

func checkImage(img ImageUpload) (contentType, ext string, err error) {
	if len(img.Data) == 0 {
		return "", "", required("image")
	}
	contentType, ext, err = storage.DetectImage(img.Filename, img.Data)
	if err != nil {
		return "", "", invalid("image", err.Error())
	}
	return contentType, ext, nil
}
