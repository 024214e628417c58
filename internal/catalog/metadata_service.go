package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mediaflow/internal/authz"
)

// MetadataService manages extraction results. Metadata has no owner column
// of its own; every guard follows the owning content's user id.
type MetadataService struct {
	repo     MetadataRepository
	contents *ContentService
	log      *slog.Logger
	now      func() time.Time
}

func NewMetadataService(repo MetadataRepository, contents *ContentService, log *slog.Logger) *MetadataService {
	if log == nil {
		log = slog.Default()
	}
	return &MetadataService{repo: repo, contents: contents, log: log, now: time.Now}
}

func (s *MetadataService) Get(ctx context.Context, id int) (Metadata, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MetadataService) GetByContent(ctx context.Context, contentID int) (Metadata, error) {
	return s.repo.FindByContentID(ctx, contentID)
}

func validateMetadata(m Metadata) error {
	if m.Extractor == "" {
		return invalidf("extractor is required")
	}
	if len(m.Result) > 0 && !json.Valid(m.Result) {
		return invalidf("result must be valid JSON")
	}
	return nil
}

// Create attaches an extraction result to a content. Only the content's
// owner or an admin may attach metadata.
func (s *MetadataService) Create(ctx context.Context, m Metadata) (Metadata, error) {
	owner, err := s.contents.OwnerID(ctx, m.ContentID)
	if err != nil {
		return Metadata{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Metadata{}, err
	}
	if err := validateMetadata(m); err != nil {
		return Metadata{}, err
	}
	m.ID = 0
	if m.ExtractedAt.IsZero() {
		m.ExtractedAt = s.now().UTC()
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return Metadata{}, err
	}
	s.log.InfoContext(ctx, "metadata created",
		"metadata_id", created.ID, "content_id", created.ContentID, "extractor", created.Extractor)
	return created, nil
}

func (s *MetadataService) Update(ctx context.Context, m Metadata) (Metadata, error) {
	existing, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return Metadata{}, err
	}
	owner, err := s.contents.OwnerID(ctx, existing.ContentID)
	if err != nil {
		return Metadata{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Metadata{}, err
	}
	if err := validateMetadata(m); err != nil {
		return Metadata{}, err
	}
	m.ContentID = existing.ContentID
	if m.ExtractedAt.IsZero() {
		m.ExtractedAt = s.now().UTC()
	}
	return s.repo.Update(ctx, m)
}

func (s *MetadataService) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	owner, err := s.contents.OwnerID(ctx, existing.ContentID)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
