package audit

import (
	"context"
	"fmt"
	"math"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// MaxPage is the highest page whose offset fits the int32 OFFSET parameter.
const MaxPage = math.MaxInt32/maxPageSize + 1

// Service pages through the audit trail.
type Service struct {
	repo Repository
}

// NewService creates an audit timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of matching entries. One extra row is fetched to
// learn whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		return Result{}, fmt.Errorf("audit: page %d exceeds %d", page, MaxPage)
	}
	q := query(filters)
	q.Offset = int32((page - 1) * pageSize)
	q.Limit = int32(pageSize + 1)

	rows, err := s.repo.Timeline(ctx, q)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching entry without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.Timeline(ctx, query(filters))
}

func query(filters TimelineFilters) Query {
	return Query{
		From:    toPgTime(filters.From),
		To:      toPgTime(filters.To),
		ActorID: optionalID(filters.ActorID),
		Entity:  optionalText(filters.Entity),
		Action:  optionalText(filters.Action),
	}
}
