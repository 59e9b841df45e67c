package rxapi

import (
	"context"
	"net/http"

	"github.com/deploymenttheory/go-api-rx-client/response"
)

// AdminService manages users and reads dashboard metrics. Every endpoint needs the
// admin role.
type AdminService struct{ *base }

func (s *AdminService) ListUsers(ctx context.Context, filters UserFilters) (response.Page[User], error) {
	if err := validated(filters); err != nil {
		return response.Page[User]{}, err
	}
	endpoint, err := withQuery(UsersEndpoint, filters)
	if err != nil {
		return response.Page[User]{}, err
	}
	return getPage[User](ctx, s.base, endpoint)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*User, error) {
	endpoint, err := pathWithID(AdminUserEndpoint, id)
	if err != nil {
		return nil, err
	}
	var user User
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validated(req); err != nil {
		return nil, err
	}
	var user User
	if err := s.do(ctx, http.MethodPost, UsersEndpoint, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser sends only the non-empty fields of req.
func (s *AdminService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	endpoint, err := pathWithID(AdminUserEndpoint, id)
	if err != nil {
		return nil, err
	}
	if err := validated(req); err != nil {
		return nil, err
	}
	var user User
	if err := s.do(ctx, http.MethodPatch, endpoint, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	endpoint, err := pathWithID(AdminUserEndpoint, id)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Metrics returns the dashboard aggregates for the optional from/to window.
func (s *AdminService) Metrics(ctx context.Context, filters MetricsFilters) (*AdminMetrics, error) {
	if err := validated(filters); err != nil {
		return nil, err
	}
	endpoint, err := withQuery(AdminMetricsEndpoint, filters)
	if err != nil {
		return nil, err
	}
	var metrics AdminMetrics
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
