package catalog

import (
	"context"
	"log/slog"
)

// CategoryService is thin CRUD. Reads are public and mutations are gated to
// admins by the route policy, so no per-row ownership applies here.
type CategoryService struct {
	repo CategoryRepository
	log  *slog.Logger
}

func NewCategoryService(repo CategoryRepository, log *slog.Logger) *CategoryService {
	if log == nil {
		log = slog.Default()
	}
	return &CategoryService{repo: repo, log: log}
}

func (s *CategoryService) List(ctx context.Context, req PageRequest) (Page[Category], error) {
	return s.repo.FindAll(ctx, req)
}

func (s *CategoryService) Get(ctx context.Context, id int) (Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, invalidf("name is required")
	}
	c.ID = 0
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Category{}, err
	}
	s.log.InfoContext(ctx, "category created", "category_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, invalidf("name is required")
	}
	return s.repo.Update(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}
