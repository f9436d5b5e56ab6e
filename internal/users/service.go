package users

import (
	"context"
	"fmt"
	"strconv"

	"github.com/userbase-hq/userbase/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	CreateUser(ctx context.Context, rec NewUser) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, q ListQuery) ([]User, error)
}

// Service handles registry business logic, including the keyset pagination
// contract over the growing collection.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ListRequest is a page request as it arrives from the transport layer. The
// cursor is the identifier of the last record the caller saw, opaque to them.
type ListRequest struct {
	Cursor string
	Limit  int
	Name   string
	Email  string
	Phone  string
}

// Page is one bounded slice of the collection. NextCursor is set only when
// another record is known to exist past the end of this page.
type Page struct {
	Users      []User `json:"users"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CreateUser inserts a record through the interactive path.
func (s *Service) CreateUser(ctx context.Context, rec NewUser) (User, error) {
	return s.repo.CreateUser(ctx, rec)
}

// GetUser fetches a record by identifier.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns one page of the collection ordered ascending by
// identifier. It fetches limit+1 rows and trims, so a page of exactly limit
// remaining records is unambiguously the last one.
func (s *Service) ListUsers(ctx context.Context, req ListRequest) (Page, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 || limit > maxLimit {
		return Page{}, fmt.Errorf("%w: limit must be between 1 and %d", shared.ErrValidation, maxLimit)
	}

	var afterID int64
	if req.Cursor != "" {
		id, err := strconv.ParseInt(req.Cursor, 10, 64)
		if err != nil || id < 1 {
			return Page{}, fmt.Errorf("%w: malformed cursor", shared.ErrValidation)
		}
		afterID = id
	}

	rows, err := s.repo.List(ctx, ListQuery{
		AfterID: afterID,
		Limit:   limit + 1,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		return Page{}, err
	}

	page := Page{Users: rows}
	if len(rows) > limit {
		page.Users = rows[:limit]
		page.NextCursor = strconv.FormatInt(page.Users[limit-1].ID, 10)
	}
	if page.Users == nil {
		page.Users = []User{}
	}
	return page, nil
}
