// Package receipts accepts payment receipt images from the public form and
// stores them on local disk or in S3.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"athmageeth-portal/logger"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file is too large")
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// Blob writes a named object and returns the URL it is reachable at.
type Blob interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Service validates and names uploads before handing them to a Blob.
type Service struct {
	blob     Blob
	maxBytes int64
	now      func() time.Time
}

// NewService creates a Service. maxBytes <= 0 selects DefaultMaxBytes.
func NewService(blob Blob, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{blob: blob, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the largest accepted upload.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Save reads one upload, checks that its content is a raster image and stores
// it under a name derived from institutionHint.
func (s *Service) Save(ctx context.Context, r io.Reader, institutionHint string) (string, error) {
	if r == nil {
		return "", ErrNoFile
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !isRasterImage(mt) {
		logger.Warn.Printf("[receipts.Save] rejected upload detected as %s", mt.String())
		return "", ErrNotImage
	}

	name := FileName(institutionHint, mt.Extension(), s.now())
	url, err := s.blob.Put(ctx, name, mt.String(), data)
	if err != nil {
		return "", fmt.Errorf("storing receipt %s: %w", name, err)
	}
	logger.Info.Printf("[receipts.Save] stored %s (%d bytes, %s)", name, len(data), mt.String())
	return url, nil
}

// svg is text and can carry script, so it never counts as a receipt image.
func isRasterImage(mt *mimetype.MIME) bool {
	return strings.HasPrefix(mt.String(), "image/") && !mt.Is("image/svg+xml")
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds "<hint>_Receipt_<unix millis><ext>" with every
// non-alphanumeric character of the hint replaced by an underscore.
func FileName(institutionHint, ext string, now time.Time) string {
	prefix := "unknown"
	if hint := strings.TrimSpace(institutionHint); hint != "" {
		prefix = unsafeChars.ReplaceAllString(hint, "_")
	}
	return fmt.Sprintf("%s_Receipt_%d%s", prefix, now.UnixMilli(), ext)
}
