package catalog

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a simple in-memory implementation of all catalog
// repositories, useful for tests and early development.
//
// NOTE: Not intended for production; the Postgres repositories are the real
// backing store.
type MemoryStore struct {
	mu sync.RWMutex

	contents   map[int]Content
	categories map[int]Category
	playlists  map[int]Playlist
	metadata   map[int]Metadata

	nextContentID  int
	nextCategoryID int
	nextPlaylistID int
	nextMetadataID int
	nextDetailID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contents:   make(map[int]Content),
		categories: make(map[int]Category),
		playlists:  make(map[int]Playlist),
		metadata:   make(map[int]Metadata),
	}
}

func (s *MemoryStore) Contents() ContentRepository        { return (*memoryContents)(s) }
func (s *MemoryStore) CategoriesRepo() CategoryRepository { return (*memoryCategories)(s) }
func (s *MemoryStore) Playlists() PlaylistRepository      { return (*memoryPlaylists)(s) }
func (s *MemoryStore) MetadataRepo() MetadataRepository   { return (*memoryMetadata)(s) }

func pageOf[T any](all []T, req PageRequest) (Page[T], error) {
	req = req.Normalize()
	total := int64(len(all))
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return NewPage(slices.Clone(all[start:end]), total, req), nil
}

/* ===================== CONTENTS ===================== */

type memoryContents MemoryStore

func (r *memoryContents) sorted(match func(Content) bool) []Content {
	out := make([]Content, 0, len(r.contents))
	for _, c := range r.contents {
		if match(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b Content) int { return a.ID - b.ID })
	return out
}

func (r *memoryContents) FindAll(ctx context.Context, req PageRequest) (Page[Content], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(Content) bool { return true }), req)
}

func (r *memoryContents) FindByType(ctx context.Context, t ContentType, req PageRequest) (Page[Content], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(c Content) bool { return c.ContentType == t }), req)
}

func (r *memoryContents) FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Content], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(c Content) bool { return c.UserID == userID }), req)
}

func (r *memoryContents) FindByUserAndType(ctx context.Context, userID int, t ContentType, req PageRequest) (Page[Content], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(c Content) bool { return c.UserID == userID && c.ContentType == t }), req)
}

func (r *memoryContents) FindByID(ctx context.Context, id int) (Content, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contents[id]
	if !ok {
		return Content{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryContents) OwnerID(ctx context.Context, id int) (int, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return c.UserID, nil
}

func (r *memoryContents) Create(ctx context.Context, c Content) (Content, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range c.CategoryIDs {
		if _, ok := r.categories[id]; !ok {
			return Content{}, ErrNotFound
		}
	}
	r.nextContentID++
	c.ID = r.nextContentID
	if c.Video != nil {
		r.nextDetailID++
		v := *c.Video
		v.ID = r.nextDetailID
		c.Video = &v
	}
	if c.Image != nil {
		r.nextDetailID++
		img := *c.Image
		img.ID = r.nextDetailID
		c.Image = &img
	}
	c.CategoryIDs = slices.Clone(c.CategoryIDs)
	r.contents[c.ID] = c
	return c, nil
}

func (r *memoryContents) Update(ctx context.Context, c Content) (Content, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contents[c.ID]
	if !ok {
		return Content{}, ErrNotFound
	}
	for _, id := range c.CategoryIDs {
		if _, ok := r.categories[id]; !ok {
			return Content{}, ErrNotFound
		}
	}
	// Detail row ids survive updates.
	if c.Video != nil && existing.Video != nil {
		c.Video.ID = existing.Video.ID
	}
	if c.Image != nil && existing.Image != nil {
		c.Image.ID = existing.Image.ID
	}
	r.contents[c.ID] = c
	return c, nil
}

func (r *memoryContents) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[id]; !ok {
		return ErrNotFound
	}
	delete(r.contents, id)
	for pid, p := range r.playlists {
		if i := slices.Index(p.ContentIDs, id); i >= 0 {
			p.ContentIDs = slices.Delete(slices.Clone(p.ContentIDs), i, i+1)
			r.playlists[pid] = p
		}
	}
	for mid, m := range r.metadata {
		if m.ContentID == id {
			delete(r.metadata, mid)
		}
	}
	return nil
}

func (r *memoryContents) Categories(ctx context.Context, contentID int) ([]Category, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contents[contentID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Category, 0, len(c.CategoryIDs))
	for _, id := range c.CategoryIDs {
		if cat, ok := r.categories[id]; ok {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (r *memoryContents) AddCategories(ctx context.Context, contentID int, categoryIDs []int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[contentID]
	if !ok {
		return ErrNotFound
	}
	ids := slices.Clone(c.CategoryIDs)
	for _, id := range categoryIDs {
		if _, ok := r.categories[id]; !ok {
			return ErrNotFound
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	c.CategoryIDs = ids
	r.contents[contentID] = c
	return nil
}

func (r *memoryContents) RemoveCategory(ctx context.Context, contentID, categoryID int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[contentID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := r.categories[categoryID]; !ok {
		return ErrNotFound
	}
	if i := slices.Index(c.CategoryIDs, categoryID); i >= 0 {
		c.CategoryIDs = slices.Delete(slices.Clone(c.CategoryIDs), i, i+1)
		r.contents[contentID] = c
	}
	return nil
}

/* ===================== CATEGORIES ===================== */

type memoryCategories MemoryStore

func (r *memoryCategories) FindAll(ctx context.Context, req PageRequest) (Page[Category], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Category) int { return a.ID - b.ID })
	return pageOf(out, req)
}

func (r *memoryCategories) FindByID(ctx context.Context, id int) (Category, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryCategories) Create(ctx context.Context, c Category) (Category, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextCategoryID++
	c.ID = r.nextCategoryID
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryCategories) Update(ctx context.Context, c Category) (Category, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return Category{}, ErrNotFound
	}
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryCategories) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	for cid, c := range r.contents {
		if i := slices.Index(c.CategoryIDs, id); i >= 0 {
			c.CategoryIDs = slices.Delete(slices.Clone(c.CategoryIDs), i, i+1)
			r.contents[cid] = c
		}
	}
	return nil
}

/* ===================== PLAYLISTS ===================== */

type memoryPlaylists MemoryStore

func (r *memoryPlaylists) sorted(match func(Playlist) bool) []Playlist {
	out := make([]Playlist, 0, len(r.playlists))
	for _, p := range r.playlists {
		if match(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Playlist) int { return a.ID - b.ID })
	return out
}

func (r *memoryPlaylists) FindPublic(ctx context.Context, req PageRequest) (Page[Playlist], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(p Playlist) bool { return p.Public }), req)
}

func (r *memoryPlaylists) FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Playlist], error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pageOf(r.sorted(func(p Playlist) bool { return p.UserID == userID }), req)
}

func (r *memoryPlaylists) FindByID(ctx context.Context, id int) (Playlist, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.playlists[id]
	if !ok {
		return Playlist{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryPlaylists) OwnerID(ctx context.Context, id int) (int, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.UserID, nil
}

func (r *memoryPlaylists) Create(ctx context.Context, p Playlist) (Playlist, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range p.ContentIDs {
		if _, ok := r.contents[id]; !ok {
			return Playlist{}, ErrNotFound
		}
	}
	r.nextPlaylistID++
	p.ID = r.nextPlaylistID
	p.ContentIDs = slices.Clone(p.ContentIDs)
	r.playlists[p.ID] = p
	return p, nil
}

func (r *memoryPlaylists) Update(ctx context.Context, p Playlist) (Playlist, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.playlists[p.ID]; !ok {
		return Playlist{}, ErrNotFound
	}
	for _, id := range p.ContentIDs {
		if _, ok := r.contents[id]; !ok {
			return Playlist{}, ErrNotFound
		}
	}
	p.ContentIDs = slices.Clone(p.ContentIDs)
	r.playlists[p.ID] = p
	return p, nil
}

func (r *memoryPlaylists) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.playlists, id)
	return nil
}

func (r *memoryPlaylists) AddContents(ctx context.Context, playlistID int, contentIDs []int) (Playlist, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[playlistID]
	if !ok {
		return Playlist{}, ErrNotFound
	}
	ids := slices.Clone(p.ContentIDs)
	for _, id := range contentIDs {
		if _, ok := r.contents[id]; !ok {
			return Playlist{}, ErrNotFound
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	p.ContentIDs = ids
	r.playlists[playlistID] = p
	return p, nil
}

func (r *memoryPlaylists) RemoveContent(ctx context.Context, playlistID, contentID int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := r.contents[contentID]; !ok {
		return ErrNotFound
	}
	if i := slices.Index(p.ContentIDs, contentID); i >= 0 {
		p.ContentIDs = slices.Delete(slices.Clone(p.ContentIDs), i, i+1)
		r.playlists[playlistID] = p
	}
	return nil
}

/* ===================== METADATA ===================== */

type memoryMetadata MemoryStore

func (r *memoryMetadata) FindByID(ctx context.Context, id int) (Metadata, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metadata[id]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryMetadata) FindByContentID(ctx context.Context, contentID int) (Metadata, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.metadata {
		if m.ContentID == contentID {
			return m, nil
		}
	}
	return Metadata{}, ErrNotFound
}

func (r *memoryMetadata) Create(ctx context.Context, m Metadata) (Metadata, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[m.ContentID]; !ok {
		return Metadata{}, ErrNotFound
	}
	r.nextMetadataID++
	m.ID = r.nextMetadataID
	r.metadata[m.ID] = m
	return m, nil
}

func (r *memoryMetadata) Update(ctx context.Context, m Metadata) (Metadata, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.metadata[m.ID]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	// Metadata never moves between contents.
	m.ContentID = existing.ContentID
	r.metadata[m.ID] = m
	return m, nil
}

func (r *memoryMetadata) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metadata[id]; !ok {
		return ErrNotFound
	}
	delete(r.metadata, id)
	return nil
}
