package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
)

func TestListItemsQuery_Defaults(t *testing.T) {
	p, err := ListItemsQuery{}.Params()
	require.NoError(t, err)

	assert.Equal(t, repository.SortByCreatedAt, p.SortBy)
	assert.Equal(t, repository.SortDesc, p.Order)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, repository.ItemFilter{}, p.Filter)
}

func TestListItemsQuery_Resolves(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := ListItemsQuery{
		UserID:        ptr(uint64(3)),
		Status:        "reading",
		Kind:          "article",
		Priority:      "low",
		TagIDs:        []uint64{5, 2, 5},
		TitleContains: "  go ",
		CreatedAfter:  &after,
		SortBy:        "priority",
		SortOrder:     "ASC",
		Limit:         ptr(100),
		Offset:        ptr(20),
	}.Params()
	require.NoError(t, err)

	assert.Equal(t, uint64(3), *p.Filter.UserID)
	assert.Equal(t, model.StatusReading, *p.Filter.Status)
	assert.Equal(t, model.KindArticle, *p.Filter.Kind)
	assert.Equal(t, model.PriorityLow, *p.Filter.Priority)
	assert.Equal(t, []uint64{2, 5}, p.Filter.TagIDs)
	// Substring searches keep surrounding spaces.
	assert.Equal(t, "  go ", p.Filter.TitleContains)
	assert.Equal(t, &after, p.Filter.CreatedAfter)
	assert.Equal(t, repository.SortByPriority, p.SortBy)
	assert.Equal(t, repository.SortAsc, p.Order)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestListItemsQuery_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		q     ListItemsQuery
		field string
	}{
		{"status", ListItemsQuery{Status: "finished"}, "status"},
		{"kind", ListItemsQuery{Kind: "video"}, "kind"},
		{"priority", ListItemsQuery{Priority: "urgent"}, "priority"},
		{"sort field", ListItemsQuery{SortBy: "title"}, "sort_by"},
		{"sort order", ListItemsQuery{SortOrder: "up"}, "sort_order"},
		{"limit zero", ListItemsQuery{Limit: ptr(0)}, "limit"},
		{"limit too large", ListItemsQuery{Limit: ptr(101)}, "limit"},
		{"negative offset", ListItemsQuery{Offset: ptr(-1)}, "offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.Params()
			require.ErrorIs(t, err, domainerrors.ErrValidation)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Contains(t, derr.Details, tt.field)
		})
	}
}
