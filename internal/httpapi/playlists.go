package httpapi

import (
	"net/http"

	"mediaflow/internal/catalog"

	"github.com/gin-gonic/gin"
)

type playlistRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Public      bool   `json:"isPublic"`
	ContentIDs  []int  `json:"contentIds"`
}

func (r playlistRequest) toModel() catalog.Playlist {
	return catalog.Playlist{
		Title:       r.Title,
		Description: r.Description,
		Public:      r.Public,
		ContentIDs:  r.ContentIDs,
	}
}

func (h Handlers) ListPublicPlaylists(c *gin.Context) {
	page, err := h.Playlists.ListPublic(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListMyPlaylists(c *gin.Context) {
	page, err := h.Playlists.ListMine(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListUserPlaylists(c *gin.Context) {
	userID, ok := paramInt(c, "userId")
	if !ok {
		return
	}
	page, err := h.Playlists.ListByUser(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) GetPlaylist(c *gin.Context) {
	id, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	playlist, err := h.Playlists.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h Handlers) CreatePlaylist(c *gin.Context) {
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	created, err := h.Playlists.Create(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) UpdatePlaylist(c *gin.Context) {
	id, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	playlist := req.toModel()
	playlist.ID = id
	updated, err := h.Playlists.Update(c.Request.Context(), playlist)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeletePlaylist(c *gin.Context) {
	id, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	if err := h.Playlists.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addContentsRequest struct {
	ContentIDs []int `json:"contentIds"`
}

func (h Handlers) AddPlaylistContents(c *gin.Context) {
	id, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	var req addContentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	playlist, err := h.Playlists.AddContents(c.Request.Context(), id, req.ContentIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

// AddPlaylistContent is the single-content variant addressed by path.
func (h Handlers) AddPlaylistContent(c *gin.Context) {
	playlistID, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	contentID, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	playlist, err := h.Playlists.AddContents(c.Request.Context(), playlistID, []int{contentID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h Handlers) RemovePlaylistContent(c *gin.Context) {
	playlistID, ok := paramInt(c, "playlistId")
	if !ok {
		return
	}
	contentID, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	if err := h.Playlists.RemoveContent(c.Request.Context(), playlistID, contentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
