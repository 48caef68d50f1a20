package handlers

import (
	"github.com/findmypaw/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ClassifyHandler struct {
	classifier     *services.ClassifyService
	maxUploadBytes int64
}

func NewClassifyHandler(classifier *services.ClassifyService, maxUploadBytes int64) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier, maxUploadBytes: maxUploadBytes}
}

// Predict relays the "file" part to the classifier and echoes its answer.
func (h *ClassifyHandler) Predict(c *fiber.Ctx) error {
	img, err := readUpload(c, "file", h.maxUploadBytes)
	if err != nil {
		return respondError(c, err)
	}

	prediction, err := h.classifier.Predict(c.UserContext(), img)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(prediction.StatusCode).Send(prediction.Body)
}
