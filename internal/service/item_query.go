package service

import (
	"strings"
	"time"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListItemsQuery is the caller-facing list request. Enum and sort fields are raw
// tokens; empty means "not given".
type ListItemsQuery struct {
	UserID        *uint64
	Status        string
	Kind          string
	Priority      string
	TagIDs        []uint64
	TitleContains string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortOrder     string
	Limit         *int
	Offset        *int
}

// Params validates q and resolves defaults. All problems are reported together.
func (q ListItemsQuery) Params() (repository.ItemListParams, error) {
	p := repository.ItemListParams{
		SortBy: repository.SortByCreatedAt,
		Order:  repository.SortDesc,
		Limit:  DefaultListLimit,
	}
	problems := map[string]string{}

	p.Filter.UserID = q.UserID
	if s := strings.TrimSpace(q.Status); s != "" {
		if v, err := model.ParseStatus(s); err != nil {
			problems["status"] = "must be one of: planned reading done"
		} else {
			p.Filter.Status = &v
		}
	}
	if s := strings.TrimSpace(q.Kind); s != "" {
		if v, err := model.ParseKind(s); err != nil {
			problems["kind"] = "must be one of: book article"
		} else {
			p.Filter.Kind = &v
		}
	}
	if s := strings.TrimSpace(q.Priority); s != "" {
		if v, err := model.ParsePriority(s); err != nil {
			problems["priority"] = "must be one of: low normal high"
		} else {
			p.Filter.Priority = &v
		}
	}
	if len(q.TagIDs) > 0 {
		p.Filter.TagIDs = model.NewTagIDSet(q.TagIDs...).Slice()
	}
	p.Filter.TitleContains = q.TitleContains
	p.Filter.CreatedAfter = q.CreatedAfter
	p.Filter.CreatedBefore = q.CreatedBefore

	switch repository.SortField(strings.TrimSpace(q.SortBy)) {
	case "":
	case repository.SortByCreatedAt:
	case repository.SortByUpdatedAt:
		p.SortBy = repository.SortByUpdatedAt
	case repository.SortByPriority:
		p.SortBy = repository.SortByPriority
	default:
		problems["sort_by"] = "must be one of: created_at updated_at priority"
	}
	switch repository.SortOrder(strings.ToLower(strings.TrimSpace(q.SortOrder))) {
	case "", repository.SortDesc:
	case repository.SortAsc:
		p.Order = repository.SortAsc
	default:
		problems["sort_order"] = "must be one of: asc desc"
	}

	if q.Limit != nil {
		if *q.Limit < 1 || *q.Limit > MaxListLimit {
			problems["limit"] = "must be between 1 and 100"
		} else {
			p.Limit = *q.Limit
		}
	}
	if q.Offset != nil {
		if *q.Offset < 0 {
			problems["offset"] = "must be zero or greater"
		} else {
			p.Offset = *q.Offset
		}
	}

	if len(problems) > 0 {
		return repository.ItemListParams{}, domainerrors.ValidationWithDetails("invalid list query", problems)
	}
	return p, nil
}
