package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrClassifierUnavailable = errors.New("image classifier unavailable")

const maxClassifierResponse = 1 << 20

// Prediction is the classifier's answer, passed through untouched.
type Prediction struct {
	StatusCode int
	Body       json.RawMessage
}

// ClassifyService relays a photo to the external species/breed classifier
// so the client can pre-fill report fields.
type ClassifyService struct {
	url    string
	client *http.Client
}

func NewClassifyService(url string, timeout time.Duration) *ClassifyService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClassifyService{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *ClassifyService) Predict(ctx context.Context, img ImageUpload) (*Prediction, error) {
	if len(img.Data) == 0 {
		return nil, required("file")
	}
	filename := img.Filename
	if filename == "" {
		filename = "upload.jpg"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxClassifierResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrClassifierUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: upstream returned status %d with a non-JSON body", ErrClassifierUnavailable, resp.StatusCode)
	}

	return &Prediction{StatusCode: resp.StatusCode, Body: body}, nil
}
