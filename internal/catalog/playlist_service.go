package catalog

import (
	"context"
	"log/slog"
	"time"

	"mediaflow/internal/auth"
	"mediaflow/internal/authz"
)

// PlaylistService owns playlist lifecycle and visibility. Public playlists
// are world-readable; private ones behave like owned resources end to end.
type PlaylistService struct {
	repo PlaylistRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewPlaylistService(repo PlaylistRepository, log *slog.Logger) *PlaylistService {
	if log == nil {
		log = slog.Default()
	}
	return &PlaylistService{repo: repo, log: log, now: time.Now}
}

func (s *PlaylistService) ListPublic(ctx context.Context, req PageRequest) (Page[Playlist], error) {
	return s.repo.FindPublic(ctx, req)
}

// ListMine lists the caller's own playlists, public and private alike.
func (s *PlaylistService) ListMine(ctx context.Context, req PageRequest) (Page[Playlist], error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return Page[Playlist]{}, authz.Unauthorized("")
	}
	return s.repo.FindByUser(ctx, userID, req)
}

// ListByUser lists another user's playlists. Any authenticated caller may
// browse them; only the per-playlist Get keeps private ones owner-scoped.
func (s *PlaylistService) ListByUser(ctx context.Context, userID int, req PageRequest) (Page[Playlist], error) {
	if _, ok := auth.PrincipalFrom(ctx); !ok {
		return Page[Playlist]{}, authz.Unauthorized("")
	}
	return s.repo.FindByUser(ctx, userID, req)
}

// Get returns a playlist. Private playlists are visible only to their owner
// or an admin; the denial is the same typed error the write paths raise.
func (s *PlaylistService) Get(ctx context.Context, id int) (Playlist, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	if !p.Public {
		if err := authz.RequireOwnerOrAdmin(ctx, p.UserID); err != nil {
			return Playlist{}, err
		}
	}
	return p, nil
}

func (s *PlaylistService) OwnerID(ctx context.Context, id int) (int, error) {
	return s.repo.OwnerID(ctx, id)
}

func validatePlaylist(p Playlist) error {
	if p.Title == "" {
		return invalidf("title is required")
	}
	return nil
}

// Create stores a new playlist owned by the caller.
func (s *PlaylistService) Create(ctx context.Context, p Playlist) (Playlist, error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return Playlist{}, authz.Unauthorized("")
	}
	p.UserID = userID
	if err := validatePlaylist(p); err != nil {
		return Playlist{}, err
	}
	p.ID = 0
	p.CreatedAt = s.now().UTC()

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Playlist{}, err
	}
	s.log.InfoContext(ctx, "playlist created", "playlist_id", created.ID, "user_id", created.UserID)
	return created, nil
}

func (s *PlaylistService) Update(ctx context.Context, p Playlist) (Playlist, error) {
	owner, err := s.repo.OwnerID(ctx, p.ID)
	if err != nil {
		return Playlist{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Playlist{}, err
	}
	p.UserID = owner
	if err := validatePlaylist(p); err != nil {
		return Playlist{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *PlaylistService) Delete(ctx context.Context, id int) error {
	owner, err := s.repo.OwnerID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "playlist deleted", "playlist_id", id)
	return nil
}

func (s *PlaylistService) AddContents(ctx context.Context, playlistID int, contentIDs []int) (Playlist, error) {
	owner, err := s.repo.OwnerID(ctx, playlistID)
	if err != nil {
		return Playlist{}, err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return Playlist{}, err
	}
	if len(contentIDs) == 0 {
		return Playlist{}, invalidf("contentIds must not be empty")
	}
	return s.repo.AddContents(ctx, playlistID, contentIDs)
}

func (s *PlaylistService) RemoveContent(ctx context.Context, playlistID, contentID int) error {
	owner, err := s.repo.OwnerID(ctx, playlistID)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(ctx, owner); err != nil {
		return err
	}
	return s.repo.RemoveContent(ctx, playlistID, contentID)
}
