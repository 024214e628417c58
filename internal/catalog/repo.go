package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by every repository when the addressed row does
// not exist. Transport code maps it to 404; ownership checks must never run
// when a lookup returned it.
var ErrNotFound = errors.New("not found")

// ContentRepository is the content store. OwnerID exists separately from
// FindByID so authorization code can resolve ownership without dragging the
// whole row (and so it can be cached independently).
type ContentRepository interface {
	FindAll(ctx context.Context, req PageRequest) (Page[Content], error)
	FindByType(ctx context.Context, t ContentType, req PageRequest) (Page[Content], error)
	FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Content], error)
	FindByUserAndType(ctx context.Context, userID int, t ContentType, req PageRequest) (Page[Content], error)
	FindByID(ctx context.Context, id int) (Content, error)
	OwnerID(ctx context.Context, id int) (int, error)
	Create(ctx context.Context, c Content) (Content, error)
	Update(ctx context.Context, c Content) (Content, error)
	Delete(ctx context.Context, id int) error

	Categories(ctx context.Context, contentID int) ([]Category, error)
	AddCategories(ctx context.Context, contentID int, categoryIDs []int) error
	RemoveCategory(ctx context.Context, contentID, categoryID int) error
}

type CategoryRepository interface {
	FindAll(ctx context.Context, req PageRequest) (Page[Category], error)
	FindByID(ctx context.Context, id int) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id int) error
}

type PlaylistRepository interface {
	FindPublic(ctx context.Context, req PageRequest) (Page[Playlist], error)
	FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Playlist], error)
	FindByID(ctx context.Context, id int) (Playlist, error)
	OwnerID(ctx context.Context, id int) (int, error)
	Create(ctx context.Context, p Playlist) (Playlist, error)
	Update(ctx context.Context, p Playlist) (Playlist, error)
	Delete(ctx context.Context, id int) error

	AddContents(ctx context.Context, playlistID int, contentIDs []int) (Playlist, error)
	RemoveContent(ctx context.Context, playlistID, contentID int) error
}

type MetadataRepository interface {
	FindByID(ctx context.Context, id int) (Metadata, error)
	FindByContentID(ctx context.Context, contentID int) (Metadata, error)
	Create(ctx context.Context, m Metadata) (Metadata, error)
	Update(ctx context.Context, m Metadata) (Metadata, error)
	Delete(ctx context.Context, id int) error
}
