package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mediaflow/pkg/utils"
)

// PostgresStore implements the catalog repositories over database/sql
// (pgx stdlib driver). Multi-step writes run inside utils.WithTx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Contents() ContentRepository        { return &pgContents{db: s.db} }
func (s *PostgresStore) CategoriesRepo() CategoryRepository { return &pgCategories{db: s.db} }
func (s *PostgresStore) Playlists() PlaylistRepository      { return &pgPlaylists{db: s.db} }
func (s *PostgresStore) MetadataRepo() MetadataRepository   { return &pgMetadata{db: s.db} }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

/* ===================== CONTENTS ===================== */

type pgContents struct {
	db *sql.DB
}

const contentColumns = `
	c.content_id, c.format, c.file_size_mb, c.language, c.title, c.content_type,
	COALESCE(c.description, ''), COALESCE(c.recommended_age, 0),
	c.storage_url, c.thumbnail_url, c.created, COALESCE(c.location_id, 0), c.user_id,
	v.video_id, v.duration_seconds, v.width, v.height,
	i.image_id, i.width, i.height`

const contentFrom = `
	FROM contents c
	LEFT JOIN videos v ON v.video_id = c.video_id
	LEFT JOIN images i ON i.image_id = c.image_id`

func scanContent(sc interface{ Scan(...any) error }) (Content, error) {
	var c Content
	var videoID, vDur, vW, vH sql.NullInt64
	var imageID, iW, iH sql.NullInt64
	err := sc.Scan(
		&c.ID, &c.Format, &c.FileSizeMB, &c.Language, &c.Title, &c.ContentType,
		&c.Description, &c.RecommendedAge,
		&c.StorageURL, &c.ThumbnailURL, &c.Created, &c.LocationID, &c.UserID,
		&videoID, &vDur, &vW, &vH,
		&imageID, &iW, &iH,
	)
	if err != nil {
		return Content{}, err
	}
	if videoID.Valid {
		c.Video = &Video{ID: int(videoID.Int64), DurationSeconds: int(vDur.Int64), Width: int(vW.Int64), Height: int(vH.Int64)}
	}
	if imageID.Valid {
		c.Image = &Image{ID: int(imageID.Int64), Width: int(iW.Int64), Height: int(iH.Int64)}
	}
	return c, nil
}

func (r *pgContents) page(ctx context.Context, req PageRequest, where string, args ...any) (Page[Content], error) {
	req = req.Normalize()

	var total int64
	countQ := `SELECT COUNT(*) FROM contents c ` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return Page[Content]{}, fmt.Errorf("count contents: %w", err)
	}

	q := `SELECT` + contentColumns + contentFrom + ` ` + where +
		fmt.Sprintf(` ORDER BY c.content_id LIMIT %d OFFSET %d`, req.Size, req.Offset())
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Page[Content]{}, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	items := []Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return Page[Content]{}, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return Page[Content]{}, fmt.Errorf("list contents: %w", err)
	}

	for i := range items {
		ids, err := categoryIDsOf(ctx, r.db, items[i].ID)
		if err != nil {
			return Page[Content]{}, err
		}
		items[i].CategoryIDs = ids
	}
	return NewPage(items, total, req), nil
}

func categoryIDsOf(ctx context.Context, q querier, contentID int) ([]int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT category_id FROM categories_contents WHERE content_id = $1 ORDER BY category_id`, contentID)
	if err != nil {
		return nil, fmt.Errorf("load category ids: %w", err)
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgContents) FindAll(ctx context.Context, req PageRequest) (Page[Content], error) {
	return r.page(ctx, req, ``)
}

func (r *pgContents) FindByType(ctx context.Context, t ContentType, req PageRequest) (Page[Content], error) {
	return r.page(ctx, req, `WHERE c.content_type = $1`, string(t))
}

func (r *pgContents) FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Content], error) {
	return r.page(ctx, req, `WHERE c.user_id = $1`, userID)
}

func (r *pgContents) FindByUserAndType(ctx context.Context, userID int, t ContentType, req PageRequest) (Page[Content], error) {
	return r.page(ctx, req, `WHERE c.user_id = $1 AND c.content_type = $2`, userID, string(t))
}

func (r *pgContents) FindByID(ctx context.Context, id int) (Content, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+contentColumns+contentFrom+` WHERE c.content_id = $1`, id)
	c, err := scanContent(row)
	if err != nil {
		return Content{}, notFoundOr(err, "find content")
	}
	c.CategoryIDs, err = categoryIDsOf(ctx, r.db, id)
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

func (r *pgContents) OwnerID(ctx context.Context, id int) (int, error) {
	var owner int
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM contents WHERE content_id = $1`, id).Scan(&owner)
	if err != nil {
		return 0, notFoundOr(err, "content owner")
	}
	return owner, nil
}

func (r *pgContents) Create(ctx context.Context, c Content) (Content, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var videoID, imageID sql.NullInt64
		if c.Video != nil {
			err := tx.QueryRowContext(ctx,
				`INSERT INTO videos (duration_seconds, width, height) VALUES ($1, $2, $3) RETURNING video_id`,
				c.Video.DurationSeconds, c.Video.Width, c.Video.Height).Scan(&c.Video.ID)
			if err != nil {
				return fmt.Errorf("insert video: %w", err)
			}
			videoID = sql.NullInt64{Int64: int64(c.Video.ID), Valid: true}
		}
		if c.Image != nil {
			err := tx.QueryRowContext(ctx,
				`INSERT INTO images (width, height) VALUES ($1, $2) RETURNING image_id`,
				c.Image.Width, c.Image.Height).Scan(&c.Image.ID)
			if err != nil {
				return fmt.Errorf("insert image: %w", err)
			}
			imageID = sql.NullInt64{Int64: int64(c.Image.ID), Valid: true}
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO contents
				(format, file_size_mb, language, title, content_type, description,
				 recommended_age, storage_url, thumbnail_url, created, location_id, user_id,
				 video_id, image_id)
			 VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,0),$8,$9,$10,NULLIF($11,0),$12,$13,$14)
			 RETURNING content_id`,
			c.Format, c.FileSizeMB, c.Language, c.Title, string(c.ContentType), c.Description,
			c.RecommendedAge, c.StorageURL, c.ThumbnailURL, c.Created, c.LocationID, c.UserID,
			videoID, imageID).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("insert content: %w", err)
		}

		return linkCategories(ctx, tx, c.ID, c.CategoryIDs)
	})
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

func linkCategories(ctx context.Context, tx *sql.Tx, contentID int, categoryIDs []int) error {
	for _, categoryID := range categoryIDs {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE category_id = $1)`, categoryID).Scan(&exists); err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories_contents (category_id, content_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, categoryID, contentID); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}
	return nil
}

func (r *pgContents) Update(ctx context.Context, c Content) (Content, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE contents SET
				format = $2, file_size_mb = $3, language = $4, title = $5, content_type = $6,
				description = NULLIF($7,''), recommended_age = NULLIF($8,0),
				storage_url = $9, thumbnail_url = $10, location_id = NULLIF($11,0), user_id = $12
			 WHERE content_id = $1`,
			c.ID, c.Format, c.FileSizeMB, c.Language, c.Title, string(c.ContentType),
			c.Description, c.RecommendedAge, c.StorageURL, c.ThumbnailURL, c.LocationID, c.UserID)
		if err != nil {
			return fmt.Errorf("update content: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		if c.Video != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE videos SET duration_seconds = $2, width = $3, height = $4
				 WHERE video_id = (SELECT video_id FROM contents WHERE content_id = $1)`,
				c.ID, c.Video.DurationSeconds, c.Video.Width, c.Video.Height); err != nil {
				return fmt.Errorf("update video: %w", err)
			}
		}
		if c.Image != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE images SET width = $2, height = $3
				 WHERE image_id = (SELECT image_id FROM contents WHERE content_id = $1)`,
				c.ID, c.Image.Width, c.Image.Height); err != nil {
				return fmt.Errorf("update image: %w", err)
			}
		}

		if c.CategoryIDs != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM categories_contents WHERE content_id = $1`, c.ID); err != nil {
				return fmt.Errorf("unlink categories: %w", err)
			}
			if err := linkCategories(ctx, tx, c.ID, c.CategoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Content{}, err
	}
	return r.FindByID(ctx, c.ID)
}

func (r *pgContents) Delete(ctx context.Context, id int) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories_contents WHERE content_id = $1`, id); err != nil {
			return fmt.Errorf("unlink categories: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists_contents WHERE content_id = $1`, id); err != nil {
			return fmt.Errorf("unlink playlists: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE content_id = $1`, id); err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM contents WHERE content_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgContents) Categories(ctx context.Context, contentID int) ([]Category, error) {
	if _, err := r.OwnerID(ctx, contentID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT cat.category_id, cat.name, cat.description
		 FROM categories cat
		 JOIN categories_contents cc ON cc.category_id = cat.category_id
		 WHERE cc.content_id = $1
		 ORDER BY cat.category_id`, contentID)
	if err != nil {
		return nil, fmt.Errorf("content categories: %w", err)
	}
	defer rows.Close()
	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgContents) AddCategories(ctx context.Context, contentID int, categoryIDs []int) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM contents WHERE content_id = $1)`, contentID).Scan(&exists); err != nil {
			return fmt.Errorf("check content: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return linkCategories(ctx, tx, contentID, categoryIDs)
	})
}

func (r *pgContents) RemoveCategory(ctx context.Context, contentID, categoryID int) error {
	if _, err := r.OwnerID(ctx, contentID); err != nil {
		return err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE category_id = $1)`, categoryID).Scan(&exists); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM categories_contents WHERE content_id = $1 AND category_id = $2`, contentID, categoryID)
	if err != nil {
		return fmt.Errorf("unlink category: %w", err)
	}
	return nil
}

/* ===================== CATEGORIES ===================== */

type pgCategories struct {
	db *sql.DB
}

func (r *pgCategories) FindAll(ctx context.Context, req PageRequest) (Page[Category], error) {
	req = req.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return Page[Category]{}, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT category_id, name, description FROM categories
		 ORDER BY category_id LIMIT %d OFFSET %d`, req.Size, req.Offset()))
	if err != nil {
		return Page[Category]{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return Page[Category]{}, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return Page[Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return NewPage(items, total, req), nil
}

func (r *pgCategories) FindByID(ctx context.Context, id int) (Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		`SELECT category_id, name, description FROM categories WHERE category_id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return Category{}, notFoundOr(err, "find category")
	}
	return c, nil
}

func (r *pgCategories) Create(ctx context.Context, c Category) (Category, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING category_id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *pgCategories) Update(ctx context.Context, c Category) (Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE category_id = $1`,
		c.ID, c.Name, c.Description)
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *pgCategories) Delete(ctx context.Context, id int) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories_contents WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("unlink contents: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

/* ===================== PLAYLISTS ===================== */

type pgPlaylists struct {
	db *sql.DB
}

func (r *pgPlaylists) page(ctx context.Context, req PageRequest, where string, args ...any) (Page[Playlist], error) {
	req = req.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists p `+where, args...).Scan(&total); err != nil {
		return Page[Playlist]{}, fmt.Errorf("count playlists: %w", err)
	}

	q := `SELECT p.playlist_id, p.title, p.description, p.is_public, p.created_at, p.user_id
	 FROM playlists p ` + where +
		fmt.Sprintf(` ORDER BY p.playlist_id LIMIT %d OFFSET %d`, req.Size, req.Offset())
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Page[Playlist]{}, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	items := []Playlist{}
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Public, &p.CreatedAt, &p.UserID); err != nil {
			return Page[Playlist]{}, fmt.Errorf("scan playlist: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return Page[Playlist]{}, fmt.Errorf("list playlists: %w", err)
	}

	for i := range items {
		ids, err := playlistContentIDs(ctx, r.db, items[i].ID)
		if err != nil {
			return Page[Playlist]{}, err
		}
		items[i].ContentIDs = ids
	}
	return NewPage(items, total, req), nil
}

func playlistContentIDs(ctx context.Context, q querier, playlistID int) ([]int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT content_id FROM playlists_contents WHERE playlist_id = $1 ORDER BY content_id`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("load playlist contents: %w", err)
	}
	defer rows.Close()
	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan content id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgPlaylists) FindPublic(ctx context.Context, req PageRequest) (Page[Playlist], error) {
	return r.page(ctx, req, `WHERE p.is_public`)
}

func (r *pgPlaylists) FindByUser(ctx context.Context, userID int, req PageRequest) (Page[Playlist], error) {
	return r.page(ctx, req, `WHERE p.user_id = $1`, userID)
}

func (r *pgPlaylists) FindByID(ctx context.Context, id int) (Playlist, error) {
	var p Playlist
	err := r.db.QueryRowContext(ctx,
		`SELECT playlist_id, title, description, is_public, created_at, user_id
		 FROM playlists WHERE playlist_id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.Public, &p.CreatedAt, &p.UserID)
	if err != nil {
		return Playlist{}, notFoundOr(err, "find playlist")
	}
	p.ContentIDs, err = playlistContentIDs(ctx, r.db, id)
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (r *pgPlaylists) OwnerID(ctx context.Context, id int) (int, error) {
	var owner int
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM playlists WHERE playlist_id = $1`, id).Scan(&owner)
	if err != nil {
		return 0, notFoundOr(err, "playlist owner")
	}
	return owner, nil
}

func (r *pgPlaylists) Create(ctx context.Context, p Playlist) (Playlist, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO playlists (title, description, is_public, created_at, user_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING playlist_id`,
			p.Title, p.Description, p.Public, p.CreatedAt, p.UserID).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert playlist: %w", err)
		}
		return linkPlaylistContents(ctx, tx, p.ID, p.ContentIDs)
	})
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func linkPlaylistContents(ctx context.Context, tx *sql.Tx, playlistID int, contentIDs []int) error {
	for _, contentID := range contentIDs {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM contents WHERE content_id = $1)`, contentID).Scan(&exists); err != nil {
			return fmt.Errorf("check content: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlists_contents (playlist_id, content_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, playlistID, contentID); err != nil {
			return fmt.Errorf("link content: %w", err)
		}
	}
	return nil
}

func (r *pgPlaylists) Update(ctx context.Context, p Playlist) (Playlist, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE playlists SET title = $2, description = $3, is_public = $4, user_id = $5
			 WHERE playlist_id = $1`,
			p.ID, p.Title, p.Description, p.Public, p.UserID)
		if err != nil {
			return fmt.Errorf("update playlist: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if p.ContentIDs != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM playlists_contents WHERE playlist_id = $1`, p.ID); err != nil {
				return fmt.Errorf("unlink contents: %w", err)
			}
			if err := linkPlaylistContents(ctx, tx, p.ID, p.ContentIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Playlist{}, err
	}
	return r.FindByID(ctx, p.ID)
}

func (r *pgPlaylists) Delete(ctx context.Context, id int) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists_contents WHERE playlist_id = $1`, id); err != nil {
			return fmt.Errorf("unlink contents: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE playlist_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgPlaylists) AddContents(ctx context.Context, playlistID int, contentIDs []int) (Playlist, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM playlists WHERE playlist_id = $1)`, playlistID).Scan(&exists); err != nil {
			return fmt.Errorf("check playlist: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return linkPlaylistContents(ctx, tx, playlistID, contentIDs)
	})
	if err != nil {
		return Playlist{}, err
	}
	return r.FindByID(ctx, playlistID)
}

func (r *pgPlaylists) RemoveContent(ctx context.Context, playlistID, contentID int) error {
	if _, err := r.OwnerID(ctx, playlistID); err != nil {
		return err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contents WHERE content_id = $1)`, contentID).Scan(&exists); err != nil {
		return fmt.Errorf("check content: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM playlists_contents WHERE playlist_id = $1 AND content_id = $2`, playlistID, contentID)
	if err != nil {
		return fmt.Errorf("unlink content: %w", err)
	}
	return nil
}

/* ===================== METADATA ===================== */

type pgMetadata struct {
	db *sql.DB
}

// result_json travels as text on the wire; NULL maps to an empty RawMessage.
func scanMetadata(sc interface{ Scan(...any) error }) (Metadata, error) {
	var m Metadata
	var result sql.NullString
	err := sc.Scan(&m.ID, &m.Extractor, &result, &m.ExtractedAt, &m.ContentID)
	if err != nil {
		return Metadata{}, err
	}
	if result.Valid {
		m.Result = []byte(result.String)
	}
	return m, nil
}

func (r *pgMetadata) FindByID(ctx context.Context, id int) (Metadata, error) {
	m, err := scanMetadata(r.db.QueryRowContext(ctx,
		`SELECT metadata_id, extractor, result_json::text, extracted_at, content_id
		 FROM metadata WHERE metadata_id = $1`, id))
	if err != nil {
		return Metadata{}, notFoundOr(err, "find metadata")
	}
	return m, nil
}

func (r *pgMetadata) FindByContentID(ctx context.Context, contentID int) (Metadata, error) {
	m, err := scanMetadata(r.db.QueryRowContext(ctx,
		`SELECT metadata_id, extractor, result_json::text, extracted_at, content_id
		 FROM metadata WHERE content_id = $1`, contentID))
	if err != nil {
		return Metadata{}, notFoundOr(err, "find metadata")
	}
	return m, nil
}

func (r *pgMetadata) Create(ctx context.Context, m Metadata) (Metadata, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contents WHERE content_id = $1)`, m.ContentID).Scan(&exists); err != nil {
		return Metadata{}, fmt.Errorf("check content: %w", err)
	}
	if !exists {
		return Metadata{}, ErrNotFound
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO metadata (extractor, result_json, extracted_at, content_id)
		 VALUES ($1, NULLIF($2, '')::jsonb, $3, $4) RETURNING metadata_id`,
		m.Extractor, string(m.Result), m.ExtractedAt, m.ContentID).Scan(&m.ID)
	if err != nil {
		return Metadata{}, fmt.Errorf("insert metadata: %w", err)
	}
	return m, nil
}

func (r *pgMetadata) Update(ctx context.Context, m Metadata) (Metadata, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE metadata SET extractor = $2, result_json = NULLIF($3, '')::jsonb, extracted_at = $4
		 WHERE metadata_id = $1`,
		m.ID, m.Extractor, string(m.Result), m.ExtractedAt)
	if err != nil {
		return Metadata{}, fmt.Errorf("update metadata: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Metadata{}, ErrNotFound
	}
	return r.FindByID(ctx, m.ID)
}

func (r *pgMetadata) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE metadata_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
