/*
Package rxapi wraps the prescription backend's REST endpoints in typed services.

Every call goes through an httpclient.Client, so credentials are attached, refreshed
and replayed the same way for all of them. Request DTOs are validated before anything
is sent.

	session := rxapi.NewSession()
	config.OnSessionEnd = session.HandleSessionEnd
	client, err := httpclient.BuildClient(config, true)
	...
	api := rxapi.NewService(client, session)
	login, err := api.Auth.Login(ctx, rxapi.LoginCredentials{Email: email, Password: password})
*/
package rxapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"go.uber.org/zap"
)

// Service groups the API services that share one client and session.
type Service struct {
	Session *Session

	Auth          *AuthService
	Admin         *AdminService
	Patients      *PatientService
	Doctors       *DoctorService
	Prescriptions *PrescriptionService
}

// NewService builds the services on client. A nil session gets a fresh one.
func NewService(client *httpclient.Client, session *Session) *Service {
	if session == nil {
		session = NewSession()
	}
	b := &base{client: client, session: session, log: client.Logger}
	return &Service{
		Session:       session,
		Auth:          &AuthService{b},
		Admin:         &AdminService{b},
		Patients:      &PatientService{b},
		Doctors:       &DoctorService{b},
		Prescriptions: &PrescriptionService{b},
	}
}

// base carries what every service needs.
type base struct {
	client  *httpclient.Client
	session *Session
	log     logger.Logger
}

// do sends a JSON request and decodes the unwrapped payload into out.
func (b *base) do(ctx context.Context, method, endpoint string, body, out any) error {
	_, err := b.client.DoRequest(ctx, method, endpoint, body, out)
	return b.check(err)
}

// check drops the session profile when the client reports the session gone.
func (b *base) check(err error) error {
	if errors.Is(err, response.ErrSessionExpired) {
		b.session.Clear()
	}
	return err
}

// getPage fetches a list endpoint and decodes it as a page.
func getPage[T any](ctx context.Context, b *base, endpoint string) (response.Page[T], error) {
	result, err := b.client.Call(ctx, endpoint, httpclient.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return response.Page[T]{}, b.check(err)
	}
	page, err := response.DecodePage[T](result)
	if err != nil {
		b.log.Warn("Failed to decode page", zap.String("endpoint", endpoint), zap.Error(err))
		return page, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return page, nil
}

// pathWithID fills an endpoint template with an escaped ID.
func pathWithID(template, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: id is required", ErrValidation)
	}
	return fmt.Sprintf(template, url.PathEscape(id)), nil
}

// validated runs Validate on each request and returns the first failure.
func validated(reqs ...any) error {
	for _, req := range reqs {
		if err := Validate(req); err != nil {
			return err
		}
	}
	return nil
}
