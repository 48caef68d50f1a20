package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/findmypaw/backend/internal/config"
	"github.com/findmypaw/backend/internal/database/dbtest"
	"github.com/findmypaw/backend/internal/dto"
	"github.com/findmypaw/backend/internal/handlers"
	"github.com/findmypaw/backend/internal/services"
	"github.com/findmypaw/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newTestServer(t *testing.T, classifierURL string) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "routes-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: time.Hour,
	}
	db := dbtest.Open(t)
	mediaDir := t.TempDir()
	media, err := storage.NewLocalStore(mediaDir, "http://localhost/media")
	require.NoError(t, err)

	authService := services.NewAuthService(db, cfg)
	reports := services.NewReportService(db, media)
	claims := services.NewClaimService(db, media, nil)
	const maxUpload = 1 << 20

	app := fiber.New()
	Setup(app, cfg, Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(db),
		Legal:    handlers.NewLegalHandler("FindMyPaw", "support@findmypaw.app"),
		Reports:  handlers.NewReportHandler(reports, services.NewScanService(db), maxUpload),
		Claims:   handlers.NewClaimHandler(claims, maxUpload),
		Classify: handlers.NewClassifyHandler(services.NewClassifyService(classifierURL, time.Second), maxUpload),
	}, Options{MediaDir: mediaDir, DisableRateLimit: true})

	return &testServer{t: t, app: app}
}

func (s *testServer) do(req *http.Request, token string) (int, []byte) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, body
}

func (s *testServer) json(method, path, token string, payload interface{}) (int, []byte) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) multipart(path, token, fileField string, fields map[string]string, file []byte) (int, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, "pet.png")
		require.NoError(s.t, err)
		_, err = part.Write(file)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req, token)
}

func (s *testServer) register(email string) dto.AuthResponse {
	s.t.Helper()
	status, body := s.json(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: email, Password: "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, status, string(body))
	var resp dto.AuthResponse
	require.NoError(s.t, json.Unmarshal(body, &resp))
	return resp
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func reportFields() map[string]string {
	return map[string]string{
		"variant":    "missing",
		"species":    "Dog",
		"location":   "Selangor",
		"event_date": "2024-06-01",
		"breed":      "Poodle",
	}
}

func TestReportAndClaimFlow(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")
	owner := s.register("owner@example.com")
	finder := s.register("finder@example.com")

	status, body := s.multipart("/api/reports", owner.AccessToken, "image", reportFields(), pngBytes)
	require.Equal(t, http.StatusCreated, status, string(body))
	report := decode[dto.ReportResponse](t, body)
	assert.True(t, report.IsMine)
	assert.Equal(t, "2024-06-01", report.EventDate)
	assert.True(t, strings.HasPrefix(report.ImageURL, "http://localhost/media/reports/"))

	mediaPath := strings.TrimPrefix(report.ImageURL, "http://localhost")
	status, _ = s.do(httptest.NewRequest(http.MethodGet, mediaPath, nil), "")
	assert.Equal(t, http.StatusOK, status)

	status, body = s.json(http.MethodGet, "/api/reports?variant=missing&exclude_mine=true", finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	feed := decode[dto.ReportListResponse](t, body)
	require.Len(t, feed.Data, 1)
	assert.False(t, feed.Data[0].IsMine)
	assert.Equal(t, 20, feed.Limit)

	status, body = s.json(http.MethodGet, "/api/reports?limit=500&offset=3", finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	paged := decode[dto.ReportListResponse](t, body)
	assert.Equal(t, 100, paged.Limit)
	assert.Equal(t, 3, paged.Offset)
	assert.Empty(t, paged.Data)

	status, body = s.json(http.MethodGet, "/api/reports/scan?species=dog&location=selangor", finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.ReportListResponse](t, body).Data, 1)

	claimPath := "/api/reports/" + report.ID.String() + "/claims"
	claimFields := map[string]string{"report_variant": "missing", "remark": "Seen near the park"}

	status, _ = s.multipart(claimPath, owner.AccessToken, "image", claimFields, pngBytes)
	assert.Equal(t, http.StatusForbidden, status, "owners cannot claim their own report")

	status, body = s.multipart(claimPath, finder.AccessToken, "image", claimFields, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "image", decode[dto.ErrorResponse](t, body).Field)

	status, body = s.multipart(claimPath, finder.AccessToken, "image", claimFields, pngBytes)
	require.Equal(t, http.StatusCreated, status, string(body))
	claim := decode[dto.ClaimResponse](t, body)
	assert.Equal(t, "pending", string(claim.Status))

	status, body = s.json(http.MethodGet, "/api/claims/incoming", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.ClaimListResponse](t, body).Data, 1)

	decidePath := "/api/claims/" + claim.ID.String() + "/decision"
	status, _ = s.json(http.MethodPut, decidePath, finder.AccessToken, dto.DecideClaimRequest{Decision: "accepted"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.json(http.MethodPut, decidePath, owner.AccessToken, dto.DecideClaimRequest{Decision: "accepted"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "accepted", string(decode[dto.ClaimResponse](t, body).Status))

	status, _ = s.json(http.MethodPut, decidePath, owner.AccessToken, dto.DecideClaimRequest{Decision: "rejected"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.json(http.MethodGet, "/api/reports/"+report.ID.String(), finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.ReportResponse](t, body).Rescued)

	status, _ = s.json(http.MethodDelete, "/api/reports/"+report.ID.String(), owner.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, status, "rescued reports are kept")

	status, body = s.json(http.MethodGet, "/api/reports/stats?location=Selangor", finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[dto.ReportStatsResponse](t, body)
	assert.Equal(t, int64(1), stats.Rescued)
	assert.Equal(t, int64(0), stats.Missing)

	status, body = s.json(http.MethodGet, "/api/claims/mine", finder.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.ClaimListResponse](t, body).Data, 1)
}

func TestReportErrors(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")
	owner := s.register("owner@example.com")
	other := s.register("other@example.com")

	status, _ := s.json(http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	fields := reportFields()
	fields["event_date"] = "01/06/2024"
	status, body := s.multipart("/api/reports", owner.AccessToken, "image", fields, pngBytes)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "event_date", decode[dto.ErrorResponse](t, body).Field)

	fields = reportFields()
	delete(fields, "species")
	status, body = s.multipart("/api/reports", owner.AccessToken, "image", fields, pngBytes)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "species", decode[dto.ErrorResponse](t, body).Field)

	status, _ = s.json(http.MethodGet, "/api/reports/not-a-uuid", owner.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.json(http.MethodGet, "/api/reports/00000000-0000-0000-0000-000000000001", owner.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.multipart("/api/reports", owner.AccessToken, "image", reportFields(), pngBytes)
	require.Equal(t, http.StatusCreated, status)
	report := decode[dto.ReportResponse](t, body)

	status, _ = s.json(http.MethodDelete, "/api/reports/"+report.ID.String(), other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.json(http.MethodDelete, "/api/reports/"+report.ID.String(), owner.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = s.json(http.MethodGet, "/api/reports/mine", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.ReportListResponse](t, body).Data)
}

func TestPredict(t *testing.T) {
	classifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"missing file"}`))
			return
		}
		_, _ = w.Write([]byte(`{"species":"Cat","breed":"Persian"}`))
	}))
	defer classifier.Close()

	s := newTestServer(t, classifier.URL)
	user := s.register("user@example.com")

	status, body := s.multipart("/api/predict", user.AccessToken, "file", nil, pngBytes)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"species":"Cat","breed":"Persian"}`, string(body))

	down := newTestServer(t, "http://127.0.0.1:1")
	user = down.register("second@example.com")
	status, _ = down.multipart("/api/predict", user.AccessToken, "file", nil, pngBytes)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")

	status, body := s.json(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, body).DB)

	status, body = s.do(httptest.NewRequest(http.MethodGet, "/legal/privacy", nil), "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Privacy Policy - FindMyPaw")

	status, _ = s.json(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}
