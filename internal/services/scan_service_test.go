package services

import (
	"context"
	"testing"

	"github.com/findmypaw/backend/internal/database/dbtest"
	"github.com/findmypaw/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreReport(t *testing.T) {
	r := &models.Report{Species: "Dog", Location: "Selangor", Breed: "Poodle", Gender: "Male"}

	cases := []struct {
		name string
		q    ScanQuery
		want int
	}{
		{"all four", ScanQuery{Species: "dog", Location: "SELANGOR", Breed: "poodle", Gender: "male"}, 4},
		{"species and location", ScanQuery{Species: "Dog", Location: "Selangor"}, 2},
		{"empty breed never counts", ScanQuery{Species: "Cat", Location: "Penang", Breed: ""}, 0},
		{"breed only", ScanQuery{Species: "Cat", Location: "Penang", Breed: "Poodle"}, 1},
		{"surrounding spaces", ScanQuery{Species: " Dog ", Location: "Penang", Gender: "Male "}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScoreReport(tc.q, r))
		})
	}

	bare := &models.Report{Species: "Dog", Location: "Selangor"}
	assert.Equal(t, 2, ScoreReport(ScanQuery{Species: "Dog", Location: "Selangor", Breed: "Poodle", Gender: "Male"}, bare))
}

func TestScan(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewScanService(db)

	match := seedReport(t, db, reportSeed{Owner: uuid.New(), Species: "Dog", Location: "Selangor"})
	foundMatch := seedReport(t, db, reportSeed{Owner: uuid.New(), Variant: models.VariantFound, Species: "dog", Location: "Penang", Breed: "Poodle"})
	seedReport(t, db, reportSeed{Owner: uuid.New(), Species: "Dog", Location: "Selangor", Rescued: true})
	seedReport(t, db, reportSeed{Owner: uuid.New(), Species: "Cat", Location: "Johor"})
	seedReport(t, db, reportSeed{Owner: uuid.New(), Species: "Cat", Location: "Selangor"})

	got, err := svc.Scan(context.Background(), ScanQuery{Species: "Dog", Location: "Selangor", Breed: "Poodle"})
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
		assert.False(t, r.Rescued)
	}
	assert.ElementsMatch(t, []uuid.UUID{match.ID, foundMatch.ID}, ids)
}

func TestScanRequiresSpeciesAndLocation(t *testing.T) {
	svc := NewScanService(dbtest.Open(t))

	_, err := svc.Scan(context.Background(), ScanQuery{Location: "Selangor"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "species", verr.Field)

	_, err = svc.Scan(context.Background(), ScanQuery{Species: "Dog", Location: "  "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)
}
