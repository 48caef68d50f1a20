package handlers

import (
	"fmt"
	"io"

	"github.com/findmypaw/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// readUpload reads the multipart file part named field. A missing part
// yields an empty ImageUpload so the service reports it as required.
func readUpload(c *fiber.Ctx, field string, maxBytes int64) (services.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.ImageUpload{}, nil
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return services.ImageUpload{}, &services.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d MB", maxBytes>>20),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("read upload %s: %w", field, err)
	}
	return services.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
