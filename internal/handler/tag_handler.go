package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/service"
)

type TagHandler struct {
	svc service.TagService
	log *zap.Logger
}

func NewTagHandler(svc service.TagService, log *zap.Logger) *TagHandler {
	return &TagHandler{svc: svc, log: log}
}

type CreateTagRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
}

type TagListResponse struct {
	Data  []TagResponse `json:"data"`
	Total int           `json:"total"`
}

func (h *TagHandler) Create(c echo.Context) error {
	var req CreateTagRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}
	tag, err := h.svc.Create(c.Request().Context(), req.UserID, req.Name)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, DataResponse[TagResponse]{Data: toTagResponse(tag)})
}

func (h *TagHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	tag, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, DataResponse[TagResponse]{Data: toTagResponse(tag)})
}

func (h *TagHandler) List(c echo.Context) error {
	q := service.ListTagsQuery{NameContains: c.QueryParam("name_contains")}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return writeError(c, h.log, domainerrors.ValidationWithDetails("invalid list query",
				map[string]string{"user_id": "must be a positive integer"}))
		}
		q.UserID = &id
	}
	tags, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := TagListResponse{Data: make([]TagResponse, 0, len(tags)), Total: len(tags)}
	for i := range tags {
		resp.Data = append(resp.Data, toTagResponse(&tags[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TagHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
