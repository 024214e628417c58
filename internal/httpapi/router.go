package httpapi

import (
	"log/slog"

	"mediaflow/internal/authz"
	"mediaflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP pipeline. Order matters: recovery and
// request logging first, then the authentication gate, then the policy
// table, so identity is settled before any rule or handler runs.
func NewRouter(log *slog.Logger, gate gin.HandlerFunc, table *authz.Table, h Handlers, graphqlHandler gin.HandlerFunc) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(gate)
	r.Use(table.Middleware())

	r.GET("/healthz", h.Health)
	if graphqlHandler != nil {
		r.POST("/graphql", graphqlHandler)
	}

	v1 := r.Group("/api/v1")

	v1.POST("/auth/token", h.IssueToken)

	contents := v1.Group("/contents")
	{
		contents.GET("", h.ListContents)
		contents.GET("/type/:contentType", h.ListContentsByType)
		contents.GET("/my-contents", h.ListMyContents)
		contents.GET("/my-contents/type/:contentType", h.ListMyContentsByType)
		contents.GET("/user/:userId", h.ListUserContents)
		contents.GET("/user/:userId/type/:contentType", h.ListUserContentsByType)
		contents.GET("/:contentId", h.GetContent)
		contents.GET("/:contentId/categories", h.ListContentCategories)
		contents.POST("", h.CreateContent)
		contents.POST("/:contentId/categories", h.AddContentCategories)
		contents.DELETE("/:contentId/categories/:categoryId", h.RemoveContentCategory)
		contents.PUT("/:contentId", h.UpdateContent)
		contents.DELETE("/:contentId", h.DeleteContent)
	}

	playlists := v1.Group("/playlists")
	{
		playlists.GET("/public", h.ListPublicPlaylists)
		playlists.GET("/my-playlists", h.ListMyPlaylists)
		playlists.GET("/user/:userId", h.ListUserPlaylists)
		playlists.GET("/:playlistId", h.GetPlaylist)
		playlists.POST("", h.CreatePlaylist)
		playlists.PUT("/:playlistId", h.UpdatePlaylist)
		playlists.DELETE("/:playlistId", h.DeletePlaylist)
		playlists.POST("/:playlistId/contents", h.AddPlaylistContents)
		playlists.POST("/:playlistId/contents/:contentId", h.AddPlaylistContent)
		playlists.DELETE("/:playlistId/contents/:contentId", h.RemovePlaylistContent)
	}

	metadata := v1.Group("/metadata")
	{
		metadata.GET("/content/:contentId", h.GetContentMetadata)
		metadata.GET("/:metadataId", h.GetMetadata)
		metadata.POST("", h.CreateMetadata)
		metadata.PUT("/:metadataId", h.UpdateMetadata)
		metadata.DELETE("/:metadataId", h.DeleteMetadata)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:categoryId", h.GetCategory)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:categoryId", h.UpdateCategory)
		categories.DELETE("/:categoryId", h.DeleteCategory)
	}

	return r
}
