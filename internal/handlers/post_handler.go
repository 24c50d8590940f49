package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/media"
	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts          *services.PostService
	maxUploadBytes int64
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, maxUploadBytes int64) *PostHandler {
	return &PostHandler{posts: posts, maxUploadBytes: maxUploadBytes}
}

// formHeadroom is the room left for the text fields of a multipart post on
// top of the image itself.
const formHeadroom = 1 << 20

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	bodyLimit := eMiddleware.BodyLimit(fmt.Sprintf("%dB", h.maxUploadBytes+formHeadroom))
	g.POST("/create", h.CreatePost, requireAuth, bodyLimit)
	g.DELETE("/post/:id", h.DeletePost, requireAuth)
}

// CreatePost creates a new post. The body is JSON, or a multipart form that
// may carry an "image" file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := services.CreatePostInput{
		Type:      models.PostType(req.Type),
		Content:   req.Content,
		CodeBlock: req.CodeBlock,
		Tags:      req.Tags,
		ImageURL:  req.Image,
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("image")
		switch {
		case err == http.ErrMissingFile:
		case err != nil:
			return apperror.NewInvalidArgument("Invalid image upload")
		default:
			contentType := file.Header.Get(echo.HeaderContentType)
			if err = media.CheckImage(contentType, file.Size, h.maxUploadBytes); err != nil {
				return err
			}
			src, err := file.Open()
			if err != nil {
				return apperror.NewInvalidArgument("Invalid image upload")
			}
			defer src.Close()
			in.Image = &services.ImageUpload{
				Name:        media.ObjectName(file.Filename, contentType),
				ContentType: contentType,
				Body:        src,
			}
		}
	}

	post, err := h.posts.Create(c.Request().Context(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post owned by the caller along with its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Message{Message: "Post deleted successfully"})
}
