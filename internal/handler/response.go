package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/reqctx"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// DataResponse is the envelope for single-entity responses.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

type TagResponse struct {
	ID     uint64 `json:"id"`
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
}

type ItemResponse struct {
	ID        uint64        `json:"id"`
	UserID    uint64        `json:"user_id"`
	Title     string        `json:"title"`
	Kind      string        `json:"kind"`
	Status    string        `json:"status"`
	Priority  string        `json:"priority"`
	Notes     *string       `json:"notes"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
	Tags      []TagResponse `json:"tags"`
}

type UserResponse struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

func toTagResponse(t *model.Tag) TagResponse {
	return TagResponse{ID: t.ID, UserID: t.UserID, Name: t.Name}
}

func toItemResponse(item *model.Item) ItemResponse {
	tags := make([]TagResponse, 0, len(item.Tags))
	for i := range item.Tags {
		tags = append(tags, toTagResponse(&item.Tags[i]))
	}
	return ItemResponse{
		ID:        item.ID,
		UserID:    item.UserID,
		Title:     item.Title,
		Kind:      string(item.Kind),
		Status:    string(item.Status),
		Priority:  string(item.Priority),
		Notes:     item.Notes,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Tags:      tags,
	}
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// writeError renders err in the error envelope with the status its code maps to.
// Non-domain errors are reported as INTERNAL without leaking their text.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		domainErr = domainerrors.Internal("internal error", err)
	}
	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		reqctx.Logger(c.Request().Context(), log).Error("request failed",
			zap.String("code", string(domainErr.Code)),
			zap.Error(err),
		)
	}
	message := domainErr.Message
	if domainErr.Code == domainerrors.CodeInternal {
		message = "internal error"
	}
	resp := NewErrorResponse(string(domainErr.Code), message)
	resp.Error.Details = domainErr.Details
	return c.JSON(status, resp)
}

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domainerrors.ValidationWithDetails("invalid id", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// bind decodes the request body, reporting malformed input as a validation error.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domainerrors.Validation("invalid json")
	}
	return nil
}
