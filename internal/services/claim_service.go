package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/models"
	"github.com/findmypaw/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileClaimInput struct {
	Ref    models.ReportRef
	Remark string
	Image  ImageUpload
}

// Waker is poked after a transaction leaves new outbox rows behind.
type Waker interface {
	Wake()
}

// ClaimStatusFilter values accepted by ListIncoming.
const (
	ClaimFilterPending = "pending"
	ClaimFilterAll     = "all"
)

// ClaimService runs the claim workflow: non-owners file claims against open
// reports, and the report owner accepts or rejects each claim exactly once.
// Accepting a claim marks the report rescued.
type ClaimService struct {
	db     *gorm.DB
	media  storage.MediaStore
	notify Waker
	now    func() time.Time
}

func NewClaimService(db *gorm.DB, media storage.MediaStore, notify Waker) *ClaimService {
	return &ClaimService{db: db, media: media, notify: notify, now: time.Now}
}

// File records a pending claim and queues an email to the report owner.
// Delivery of that email never changes the outcome of File.
func (s *ClaimService) File(ctx context.Context, a actor.Actor, in FileClaimInput) (*models.Claim, error) {
	if a.IsZero() {
		return nil, errNoActor
	}

	in.Remark = strings.TrimSpace(in.Remark)
	if !in.Ref.Valid() {
		return nil, invalid("report_variant", "must be one of: missing found")
	}
	if in.Remark == "" {
		return nil, required("remark")
	}
	if len(in.Remark) > 2000 {
		return nil, invalid("remark", "must be at most 2000 characters")
	}
	contentType, ext, err := checkImage(in.Image)
	if err != nil {
		return nil, err
	}

	report, err := s.loadReport(ctx, s.db, in.Ref.ID())
	if err != nil {
		return nil, err
	}
	if report.Variant != in.Ref.Variant() {
		return nil, invalid("report_variant", "does not match the report")
	}
	if report.OwnerID == a.ID {
		return nil, ErrSelfClaim
	}
	if report.Rescued {
		return nil, ErrReportRescued
	}

	key := storage.NewKey(storage.PrefixClaims, a.ID, ext)
	url, err := s.media.Put(ctx, key, in.Image.Data, contentType)
	if err != nil {
		slog.Error("claim proof upload failed", "report_id", report.ID.String(), "user_id", a.ID.String(), "action", "claim.file", "error", err)
		return nil, storageErr("upload claim proof", err)
	}

	claim := &models.Claim{
		ID:        uuid.New(),
		ClaimerID: a.ID,
		ImageURL:  url,
		ImageKey:  key,
		Remark:    in.Remark,
		Status:    models.ClaimPending,
	}
	claim.SetRef(in.Ref)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			Kind:        models.NotificationClaimFiled,
			RecipientID: report.OwnerID,
			ReportID:    report.ID,
			ClaimID:     claim.ID,
			ImageURL:    url,
			Remark:      claim.Remark,
			Status:      models.NotificationPending,
		}).Error
	})
	if err != nil {
		slog.Error("claim insert failed", "report_id", report.ID.String(), "user_id", a.ID.String(), "action", "claim.file", "image_key", key, "error", err)
		return nil, storageErr("insert claim", err)
	}

	if s.notify != nil {
		s.notify.Wake()
	}

	slog.Info("claim filed", "claim_id", claim.ID.String(), "report_id", report.ID.String(), "user_id", a.ID.String())
	return claim, nil
}

// Decide moves a pending claim to accepted or rejected. Only the owner of
// the claimed report may decide. Accepting marks the report rescued in the
// same transaction; other pending claims on that report are left as they are.
func (s *ClaimService) Decide(ctx context.Context, a actor.Actor, claimID uuid.UUID, decision models.ClaimStatus) (*models.Claim, error) {
	if a.IsZero() {
		return nil, errNoActor
	}
	if !decision.Terminal() {
		return nil, invalid("decision", "must be one of: accepted rejected")
	}

	var claim models.Claim
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&claim, "id = ?", claimID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return storageErr("load claim", err)
		}

		report, err := s.loadReport(ctx, tx, claim.ReportID)
		if err != nil {
			return err
		}
		if report.OwnerID != a.ID {
			return ErrNotReportOwner
		}
		if claim.Status.Terminal() {
			return ErrClaimDecided
		}

		now := s.now()
		result := tx.Model(&models.Claim{}).
			Where("id = ? AND status = ?", claim.ID, models.ClaimPending).
			Updates(map[string]interface{}{
				"status":     decision,
				"decided_at": now,
			})
		if result.Error != nil {
			return storageErr("update claim", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrClaimDecided
		}

		if decision == models.ClaimAccepted {
			result := tx.Model(&models.Report{}).
				Where("id = ? AND rescued = ?", report.ID, false).
				Update("rescued", true)
			if result.Error != nil {
				return storageErr("mark report rescued", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrReportRescued
			}
		}

		claim.Status = decision
		claim.DecidedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			slog.Error("claim decision failed", "claim_id", claimID.String(), "user_id", a.ID.String(), "action", "claim.decide", "error", err)
		}
		return nil, err
	}

	slog.Info("claim decided", "claim_id", claim.ID.String(), "report_id", claim.ReportID.String(), "user_id", a.ID.String(), "decision", string(decision))
	return &claim, nil
}

// ListIncoming returns claims filed by other users against the actor's
// reports, newest first. status is "pending" (the default) or "all".
func (s *ClaimService) ListIncoming(ctx context.Context, a actor.Actor, status string) ([]models.Claim, error) {
	if a.IsZero() {
		return nil, errNoActor
	}

	query := s.db.WithContext(ctx).
		Model(&models.Claim{}).
		Select("claims.*").
		Joins("JOIN reports ON reports.id = claims.report_id").
		Where("reports.owner_id = ? AND claims.claimer_id <> ?", a.ID, a.ID)

	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", ClaimFilterPending:
		query = query.Where("claims.status = ?", models.ClaimPending)
	case ClaimFilterAll:
	case string(models.ClaimAccepted), string(models.ClaimRejected):
		query = query.Where("claims.status = ?", strings.ToLower(strings.TrimSpace(status)))
	default:
		return nil, invalid("status", "must be one of: pending accepted rejected all")
	}

	var claims []models.Claim
	if err := query.Order("claims.created_at DESC").Find(&claims).Error; err != nil {
		return nil, storageErr("list incoming claims", err)
	}
	return claims, nil
}

// ListOutgoing returns the claims the actor filed, newest first.
func (s *ClaimService) ListOutgoing(ctx context.Context, a actor.Actor) ([]models.Claim, error) {
	if a.IsZero() {
		return nil, errNoActor
	}

	var claims []models.Claim
	if err := s.db.WithContext(ctx).
		Where("claimer_id = ?", a.ID).
		Order("created_at DESC").
		Find(&claims).Error; err != nil {
		return nil, storageErr("list outgoing claims", err)
	}
	return claims, nil
}

func (s *ClaimService) loadReport(ctx context.Context, db *gorm.DB, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := db.WithContext(ctx).First(&report, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, storageErr("load report", err)
	}
	return &report, nil
}
