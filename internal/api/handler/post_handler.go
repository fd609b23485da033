package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/core/ports"
)

type PostHandler struct {
	postService ports.PostService
}

func NewPostHandler(postService ports.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

type createPostRequest struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CreatePost creates a blog post owned by the caller.
//
// @Summary      Create a blog post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post content"
// @Success      201   {object}  domain.Post
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	post, err := h.postService.CreatePost(c.Request().Context(), session.ID, req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// ListPosts lists the caller's posts, newest first.
//
// @Summary      List the caller's blog posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Post
// @Failure      401  {object}  errorResponse
// @Router       /api/posts [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	posts, err := h.postService.ListPosts(c.Request().Context(), session.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
