package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaStore holds report photos and claim proof photos.
type MediaStore interface {
	// Put writes data under key and returns the object's public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes key. Callers treat failures as best effort.
	Delete(ctx context.Context, key string) error
}

const (
	PrefixReports = "reports"
	PrefixClaims  = "claims"
)

// NewKey builds a collision-resistant object key scoped to its owner,
// e.g. reports/<owner>/1718000000000000000-<uuid>.jpg.
func NewKey(prefix string, owner uuid.UUID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s/%d-%s%s", prefix, owner, time.Now().UnixNano(), uuid.NewString(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
