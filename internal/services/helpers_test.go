package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/mail"
	"github.com/findmypaw/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngUpload() ImageUpload {
	return ImageUpload{Filename: "pet.png", Data: pngBytes}
}

func newActor() actor.Actor {
	id := uuid.New()
	return actor.Actor{ID: id, Email: id.String() + "@example.com"}
}

type fakeMedia struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	putErr    error
	deleteErr error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (m *fakeMedia) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.objects[key] = data
	return "https://media.test/" + key, nil
}

func (m *fakeMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type wakeCounter struct {
	mu sync.Mutex
	n  int
}

func (w *wakeCounter) Wake() {
	w.mu.Lock()
	w.n++
	w.mu.Unlock()
}

func (w *wakeCounter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mail.Message
	err    error
	onSend func()
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onSend != nil {
		m.onSend()
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type staticIdentity map[uuid.UUID]string

func (s staticIdentity) EmailFor(_ context.Context, id uuid.UUID) (string, error) {
	email, ok := s[id]
	if !ok {
		return "", ErrUserNotFound
	}
	return email, nil
}

var errBoom = errors.New("boom")

type reportSeed struct {
	Owner     uuid.UUID
	Variant   models.ReportVariant
	Species   string
	Location  string
	Breed     string
	Gender    string
	Rescued   bool
	CreatedAt time.Time
}

func seedReport(t *testing.T, db *gorm.DB, s reportSeed) *models.Report {
	t.Helper()
	if s.Variant == "" {
		s.Variant = models.VariantMissing
	}
	if s.Species == "" {
		s.Species = "Dog"
	}
	if s.Location == "" {
		s.Location = "Selangor"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r := &models.Report{
		OwnerID:   s.Owner,
		Variant:   s.Variant,
		ImageURL:  "https://media.test/seed.png",
		ImageKey:  "reports/seed.png",
		Species:   s.Species,
		Location:  s.Location,
		Breed:     s.Breed,
		Gender:    s.Gender,
		EventDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Rescued:   s.Rescued,
		CreatedAt: s.CreatedAt,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}
