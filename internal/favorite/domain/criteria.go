package domain

import (
	"fmt"
	"math"
	"strings"
)

// Sort fields
const (
	SortByAddedAt   = "addedAt"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Paging defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchCriteria is the catalog search shape, applied to a user's favorites.
type SearchCriteria struct {
	Term          string
	CategoryID    string
	Tags          []string
	SortBy        string
	SortDirection string
	PageNumber    int
	PageSize      int
}

// Normalize fills defaults and rejects unknown sort options.
func (c SearchCriteria) Normalize() (SearchCriteria, error) {
	c.Term = strings.TrimSpace(c.Term)
	c.CategoryID = strings.TrimSpace(c.CategoryID)

	tags := make([]string, 0, len(c.Tags))
	for _, tag := range c.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	c.Tags = tags

	switch c.SortBy {
	case "":
		c.SortBy = SortByAddedAt
	case SortByAddedAt, SortByCreatedAt, SortByTitle:
	default:
		return c, fmt.Errorf("unknown sort field %q: %w", c.SortBy, ErrInvalidArgument)
	}

	switch strings.ToLower(c.SortDirection) {
	case "":
		c.SortDirection = SortDesc
	case SortAsc, SortDesc:
		c.SortDirection = strings.ToLower(c.SortDirection)
	default:
		return c, fmt.Errorf("unknown sort direction %q: %w", c.SortDirection, ErrInvalidArgument)
	}

	if c.PageNumber <= 0 {
		c.PageNumber = 1
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	// keeps Offset() + PageSize within int
	if maxPage := math.MaxInt / c.PageSize; c.PageNumber > maxPage {
		c.PageNumber = maxPage
	}
	return c, nil
}

// Offset is the index of the first item of the requested page.
func (c SearchCriteria) Offset() int {
	return (c.PageNumber - 1) * c.PageSize
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
