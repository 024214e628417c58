package catalog

import (
	"context"
	"log/slog"
	"time"

	"mediaflow/internal/auth"
	"mediaflow/internal/authz"
)

// ContentService owns the content lifecycle and the ownership guard around
// it. Both API surfaces call through here, so the owner-or-admin rule is
// enforced exactly once.
type ContentService struct {
	repo    ContentRepository
	owners  *OwnerCache
	uploads *UploadLimiter
	log     *slog.Logger
	now     func() time.Time
}

func NewContentService(repo ContentRepository, owners *OwnerCache, uploads *UploadLimiter, log *slog.Logger) *ContentService {
	if log == nil {
		log = slog.Default()
	}
	return &ContentService{
		repo:    repo,
		owners:  owners,
		uploads: uploads,
		log:     log,
		now:     time.Now,
	}
}

func (s *ContentService) List(ctx context.Context, req PageRequest) (Page[Content], error) {
	return s.repo.FindAll(ctx, req)
}

func (s *ContentService) ListByType(ctx context.Context, t ContentType, req PageRequest) (Page[Content], error) {
	if !t.Valid() {
		return Page[Content]{}, invalidf("unknown content type %q", t)
	}
	return s.repo.FindByType(ctx, t, req)
}

func (s *ContentService) ListByUser(ctx context.Context, userID int, req PageRequest) (Page[Content], error) {
	return s.repo.FindByUser(ctx, userID, req)
}

func (s *ContentService) ListByUserAndType(ctx context.Context, userID int, t ContentType, req PageRequest) (Page[Content], error) {
	if !t.Valid() {
		return Page[Content]{}, invalidf("unknown content type %q", t)
	}
	return s.repo.FindByUserAndType(ctx, userID, t, req)
}

// ListMine lists the caller's own contents.
func (s *ContentService) ListMine(ctx context.Context, req PageRequest) (Page[Content], error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return Page[Content]{}, authz.Unauthorized("")
	}
	return s.repo.FindByUser(ctx, userID, req)
}

func (s *ContentService) ListMineByType(ctx context.Context, t ContentType, req PageRequest) (Page[Content], error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return Page[Content]{}, authz.Unauthorized("")
	}
	return s.ListByUserAndType(ctx, userID, t, req)
}

func (s *ContentService) Get(ctx context.Context, id int) (Content, error) {
	return s.repo.FindByID(ctx, id)
}

// OwnerID resolves the owning user of a content, through the cache when one
// is configured.
func (s *ContentService) OwnerID(ctx context.Context, id int) (int, error) {
	return s.owners.Owner(ctx, id, s.repo.OwnerID)
}

func validateContent(c Content) error {
	if c.Title == "" {
		return invalidf("title is required")
	}
	if !c.ContentType.Valid() {
		return invalidf("unknown content type %q", c.ContentType)
	}
	if c.StorageURL == "" {
		return invalidf("storageUrl is required")
	}
	if c.FileSizeMB < 0 {
		return invalidf("fileSizeMB must not be negative")
	}
	if c.ContentType == ContentTypeVideo && c.Video == nil {
		return invalidf("video detail is required for VIDEO content")
	}
	if c.ContentType == ContentTypeImage && c.Image == nil {
		return invalidf("image detail is required for IMAGE content")
	}
	return nil
}

// Create stores a new content owned by the caller. The owner id always
// comes from the request identity, never from the payload.
func (s *ContentService) Create(ctx context.Context, c Content) (Content, error) {
	if userID, err := auth.CurrentUserID(ctx); err == nil {
		c.UserID = userID
	} else {
		// Reachable only while the public-create exception is enabled;
		// such rows carry no owner and only admins can touch them later.
		c.UserID = 0
	}
	if err := validateContent(c); err != nil {
		return Content{}, err
	}
	c.ID = 0
	c.Created = s.now().UTC()

	release, err := s.uploads.Acquire(ctx, c.UserID)
	if err != nil {
		return Content{}, err
	}
	defer release()

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Content{}, err
	}
	s.log.InfoContext(ctx, "content created",
		"content_id", created.ID, "content_type", created.ContentType, "user_id", created.UserID)
	return created, nil
}

// Update replaces a content's mutable fields. Only the owner or an admin
// may update; the owner id itself is immutable.
func (s *ContentService) Update(ctx context.Context, c Content) (Content, error) {
	owner, err := s.OwnerID(ctx, c.ID)
	if err != nil {
		return Content{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Content{}, err
	}
	c.UserID = owner
	if err := validateContent(c); err != nil {
		return Content{}, err
	}
	return s.repo.Update(ctx, c)
}

func (s *ContentService) Delete(ctx context.Context, id int) error {
	owner, err := s.OwnerID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.owners.Invalidate(ctx, id)
	s.log.InfoContext(ctx, "content deleted", "content_id", id)
	return nil
}

func (s *ContentService) Categories(ctx context.Context, contentID int) ([]Category, error) {
	return s.repo.Categories(ctx, contentID)
}

func (s *ContentService) AddCategories(ctx context.Context, contentID int, categoryIDs []int) (Content, error) {
	owner, err := s.OwnerID(ctx, contentID)
	if err != nil {
		return Content{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Content{}, err
	}
	if len(categoryIDs) == 0 {
		return Content{}, invalidf("categoryIds must not be empty")
	}
	if err := s.repo.AddCategories(ctx, contentID, categoryIDs); err != nil {
		return Content{}, err
	}
	return s.repo.FindByID(ctx, contentID)
}

func (s *ContentService) RemoveCategory(ctx context.Context, contentID, categoryID int) error {
	owner, err := s.OwnerID(ctx, contentID)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return err
	}
	return s.repo.RemoveCategory(ctx, contentID, categoryID)
}
