package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/shared/storage/object"
	"sitecopy-backend/internal/shared/telemetry"
)

// MaxUploadBytes caps incoming brochure size.
const MaxUploadBytes = 10 << 20

var ErrTooLarge = errors.New("file too large")

// Service stores uploaded source material and seeds baseline candidates.
type Service struct {
	Store object.ObjectStore
}

// Ingested is the outcome of one upload.
type Ingested struct {
	StorageKey string            `json:"storageKey"`
	SizeBytes  int64             `json:"sizeBytes"`
	MimeType   string            `json:"mimeType"`
	Baseline   content.Candidate `json:"baseline"`
}

// Ingest saves the upload, extracts its text, and seeds a baseline candidate.
func (s *Service) Ingest(ctx context.Context, userID, fileName string, r io.Reader, bctx content.BusinessContext) (Ingested, error) {
	if s.Store == nil {
		return Ingested{}, errors.New("object store not configured")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return Ingested{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > MaxUploadBytes {
		return Ingested{}, ErrTooLarge
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Ingested{}, fmt.Errorf("save upload: %w", err)
	}

	text, err := ExtractText(ctx, data, mimeType, fileName)
	if err != nil {
		return Ingested{}, err
	}

	baseline := SeedCandidate(text, bctx)
	telemetry.Info("ingest.seeded", map[string]any{
		"user_id":      userID,
		"storage_key":  storageKey,
		"mime_type":    mimeType,
		"size_bytes":   size,
		"has_headline": baseline.Headline != "",
		"services":     len(baseline.Services),
	})

	return Ingested{
		StorageKey: storageKey,
		SizeBytes:  size,
		MimeType:   mimeType,
		Baseline:   baseline,
	}, nil
}
