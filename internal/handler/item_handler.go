package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/service"
)

type ItemHandler struct {
	svc service.ItemService
	log *zap.Logger
}

func NewItemHandler(svc service.ItemService, log *zap.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

type ItemListResponse struct {
	Data   []ItemResponse `json:"data"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type TagIDsRequest struct {
	TagIDs []uint64 `json:"tag_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req service.CreateItemInput
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, DataResponse[ItemResponse]{Data: toItemResponse(item)})
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, DataResponse[ItemResponse]{Data: toItemResponse(item)})
}

func (h *ItemHandler) List(c echo.Context) error {
	q, err := parseListItemsQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := ItemListResponse{
		Data:   make([]ItemResponse, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Items {
		resp.Data = append(resp.Data, toItemResponse(&page.Items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ItemHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var patch model.ItemPatch
	if err := bind(c, &patch); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, DataResponse[ItemResponse]{Data: toItemResponse(item)})
}

func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandler) AttachTags(c echo.Context) error {
	return h.changeTags(c, h.svc.AttachTags)
}

func (h *ItemHandler) DetachTags(c echo.Context) error {
	return h.changeTags(c, h.svc.DetachTags)
}

func (h *ItemHandler) changeTags(c echo.Context, apply func(ctx context.Context, id uint64, tagIDs []uint64) (*model.Item, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req TagIDsRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := apply(c.Request().Context(), id, req.TagIDs)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, DataResponse[ItemResponse]{Data: toItemResponse(item)})
}

// parseListItemsQuery reads list parameters from the query string. Syntax
// errors are collected per parameter; semantic checks happen in the service.
func parseListItemsQuery(c echo.Context) (service.ListItemsQuery, error) {
	q := service.ListItemsQuery{
		Status:        c.QueryParam("status"),
		Kind:          c.QueryParam("kind"),
		Priority:      c.QueryParam("priority"),
		TitleContains: c.QueryParam("title_contains"),
		SortBy:        c.QueryParam("sort_by"),
		SortOrder:     c.QueryParam("sort_order"),
	}
	problems := map[string]string{}

	if v := c.QueryParam("user_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err != nil {
			problems["user_id"] = "must be a positive integer"
		} else {
			q.UserID = &id
		}
	}
	// Accept both tag_ids=1,2 and tag_ids=1&tag_ids=2.
	for _, raw := range c.QueryParams()["tag_ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				problems["tag_ids"] = "must be a comma-separated list of integers"
				continue
			}
			q.TagIDs = append(q.TagIDs, id)
		}
	}
	for name, dst := range map[string]**time.Time{
		"created_after":  &q.CreatedAfter,
		"created_before": &q.CreatedBefore,
	} {
		if v := c.QueryParam(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				problems[name] = "must be an RFC3339 timestamp"
				continue
			}
			*dst = &t
		}
	}
	for name, dst := range map[string]**int{
		"limit":  &q.Limit,
		"offset": &q.Offset,
	} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems[name] = "must be an integer"
				continue
			}
			*dst = &n
		}
	}

	if len(problems) > 0 {
		return q, domainerrors.ValidationWithDetails("invalid list query", problems)
	}
	return q, nil
}
