package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
)

// PostController : Post controller struct
type PostController struct {
	svc *service.SatstackerService
}

func NewPostController(svc *service.SatstackerService) *PostController {
	return &PostController{svc: svc}
}

type CreatePostRequestBody struct {
	Title string `json:"title" validate:"required"`
	Url   string `json:"url"`
	Body  string `json:"body"`
}

type CreateCommentRequestBody struct {
	Body string `json:"body" validate:"required"`
}

func (controller *PostController) CreatePost(c echo.Context) error {
	userId := c.Get("UserID").(string)
	var body CreatePostRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create post request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	post, err := controller.svc.CreatePost(c.Request().Context(), userId, body.Title, body.Url, body.Body)
	if err != nil {
		c.Logger().Errorf("Failed to create post: user_id:%s error:%v", userId, err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, post)
}

func (controller *PostController) ListPosts(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		limit = parsed
	}

	posts, err := controller.svc.ListPosts(c.Request().Context(), c.QueryParam("sort"), limit)
	if err != nil {
		c.Logger().Errorf("Failed to list posts: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

func (controller *PostController) GetPost(c echo.Context) error {
	post, err := controller.svc.FindPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, responses.PostNotFoundError)
		}
		c.Logger().Errorf("Failed to load post: post_id:%s error:%v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, post)
}

func (controller *PostController) CreateComment(c echo.Context) error {
	userId := c.Get("UserID").(string)
	var body CreateCommentRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	comment, err := controller.svc.CreateComment(c.Request().Context(), c.Param("id"), userId, body.Body)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, responses.PostNotFoundError)
		}
		c.Logger().Errorf("Failed to create comment: post_id:%s error:%v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, comment)
}

func (controller *PostController) ListComments(c echo.Context) error {
	comments, err := controller.svc.ListComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		c.Logger().Errorf("Failed to list comments: post_id:%s error:%v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}
