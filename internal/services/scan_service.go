package services

import (
	"context"
	"strings"

	"github.com/findmypaw/backend/internal/models"
	"gorm.io/gorm"
)

// MinScanMatches is how many attributes a report must share with the query
// to be offered as a possible duplicate.
const MinScanMatches = 2

type ScanQuery struct {
	Species  string `json:"species" validate:"required"`
	Location string `json:"location" validate:"required"`
	Breed    string `json:"breed"`
	Gender   string `json:"gender"`
}

// ScanService looks for existing open reports resembling a report the
// caller is about to create. Results are advisory only.
type ScanService struct {
	db *gorm.DB
}

func NewScanService(db *gorm.DB) *ScanService {
	return &ScanService{db: db}
}

// Scan returns every open report of either variant scoring at least
// MinScanMatches, in storage order.
func (s *ScanService) Scan(ctx context.Context, q ScanQuery) ([]models.Report, error) {
	q.Species = strings.TrimSpace(q.Species)
	q.Location = strings.TrimSpace(q.Location)
	q.Breed = strings.TrimSpace(q.Breed)
	q.Gender = strings.TrimSpace(q.Gender)
	if err := validateStruct(&q); err != nil {
		return nil, err
	}

	var open []models.Report
	if err := s.db.WithContext(ctx).Where("rescued = ?", false).Find(&open).Error; err != nil {
		return nil, storageErr("load open reports", err)
	}

	candidates := make([]models.Report, 0, len(open))
	for _, r := range open {
		if ScoreReport(q, &r) >= MinScanMatches {
			candidates = append(candidates, r)
		}
	}
	return candidates, nil
}

// ScoreReport counts case-insensitive exact matches between q and r.
// Species and location always count; breed and gender only count when both
// the query and the report carry a value.
func ScoreReport(q ScanQuery, r *models.Report) int {
	score := 0
	if sameText(q.Species, r.Species) {
		score++
	}
	if sameText(q.Location, r.Location) {
		score++
	}
	if q.Breed != "" && r.Breed != "" && sameText(q.Breed, r.Breed) {
		score++
	}
	if q.Gender != "" && r.Gender != "" && sameText(q.Gender, r.Gender) {
		score++
	}
	return score
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
