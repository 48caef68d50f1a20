package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"no file"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "pet.png" || len(data) != len(pngBytes) {
			http.Error(w, `{"error":"bad file"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"species":"Dog","breed":"Poodle","confidence":0.91}`))
	}))
	defer srv.Close()

	svc := NewClassifyService(srv.URL, time.Second)
	got, err := svc.Predict(context.Background(), pngUpload())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.JSONEq(t, `{"species":"Dog","breed":"Poodle","confidence":0.91}`, string(got.Body))
}

func TestClassifyPassesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"not an animal"}`))
	}))
	defer srv.Close()

	got, err := NewClassifyService(srv.URL, time.Second).Predict(context.Background(), pngUpload())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, got.StatusCode)
	assert.JSONEq(t, `{"error":"not an animal"}`, string(got.Body))
}

func TestClassifyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClassifyService(url, time.Second).Predict(context.Background(), pngUpload())
	assert.ErrorIs(t, err, ErrClassifierUnavailable)

	_, err = NewClassifyService(url, time.Second).Predict(context.Background(), ImageUpload{})
	assert.ErrorIs(t, err, ErrValidation)
}
