package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/validation"
)

type testRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"display_name" validate:"required,max=10"`
	Kind     string   `json:"kind" validate:"required,kind"`
	Priority string   `json:"priority,omitempty" validate:"omitempty,priority"`
	TagIDs   []uint64 `json:"tag_ids" validate:"min=1,dive,gt=0"`
}

func TestValidate_OK(t *testing.T) {
	v := validation.New()
	err := v.Validate(testRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Kind:     "book",
		Priority: "high",
		TagIDs:   []uint64{1},
	})
	assert.NoError(t, err)
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := validation.New()
	err := v.Validate(testRequest{
		Email:    "not-an-email",
		Name:     "A very long display name",
		Kind:     "podcast",
		Priority: "urgent",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)

	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must not exceed 10 characters", details["display_name"])
	assert.Equal(t, "must be one of: book article", details["kind"])
	assert.Equal(t, "must be one of: low normal high", details["priority"])
	assert.Equal(t, "must contain at least 1 entries", details["tag_ids"])
}
