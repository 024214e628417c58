package catalog

import (
	"encoding/json"
	"time"
)

// ContentType is the closed content kind enumeration.
type ContentType string

const (
	ContentTypeVideo ContentType = "VIDEO"
	ContentTypeImage ContentType = "IMAGE"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeVideo || t == ContentTypeImage
}

// Video holds the video-specific detail row attached to a content.
type Video struct {
	ID              int `json:"videoId"`
	DurationSeconds int `json:"durationSeconds"`
	Width           int `json:"width"`
	Height          int `json:"height"`
}

// Image holds the image-specific detail row attached to a content.
type Image struct {
	ID     int `json:"imageId"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Content is a catalog entry (one uploaded video or image).
// UserID is the owning user, stamped from the request identity at creation
// and the anchor for every ownership check.
type Content struct {
	ID             int         `json:"contentId"`
	Format         string      `json:"format"`
	FileSizeMB     int         `json:"fileSizeMB"`
	Language       string      `json:"language"`
	Title          string      `json:"title"`
	ContentType    ContentType `json:"contentType"`
	Description    string      `json:"description,omitempty"`
	RecommendedAge int         `json:"recommendedAge,omitempty"`
	StorageURL     string      `json:"storageUrl"`
	ThumbnailURL   string      `json:"thumbnailUrl"`
	Created        time.Time   `json:"created"`
	LocationID     int         `json:"locationId,omitempty"`
	UserID         int         `json:"userId"`

	Video *Video `json:"video,omitempty"`
	Image *Image `json:"image,omitempty"`

	CategoryIDs []int `json:"categoryIds,omitempty"`
}

type Category struct {
	ID          int    `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Playlist is a user-curated ordered set of contents. Private playlists are
// readable only by their owner or an admin.
type Playlist struct {
	ID          int       `json:"playListId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Public      bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      int       `json:"userId"`
	ContentIDs  []int     `json:"contentIds"`
}

// Metadata is the extraction result attached to exactly one content.
// Ownership follows the owning content's user id.
type Metadata struct {
	ID          int             `json:"metadataId"`
	Extractor   string          `json:"extractor"`
	Result      json.RawMessage `json:"result"`
	ExtractedAt time.Time       `json:"extractedAt"`
	ContentID   int             `json:"contentId"`
}
