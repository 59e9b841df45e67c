package rxapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var (
	doctorUser  = map[string]any{"id": "u-doc", "email": "doc@rx.test", "name": "Dr. Ana", "role": "doctor"}
	patientUser = map[string]any{"id": "u-pat", "email": "pat@rx.test", "name": "Luis", "role": "patient"}
)

// backend is a stand-in for the prescription API.
type backend struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	access        string
	refresh       string
	refreshStatus int
	logoutStatus  int
	refreshCalls  int
	requests      []recorded
}

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, access: "a1", refresh: "r1"}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth/login", b.handleLogin)
	r.Post("/auth/refresh", b.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(b.requireBearer)

		r.Get("/auth/profile", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": doctorUser})
		})
		r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			code := b.logoutStatus
			b.mu.Unlock()
			if code != 0 {
				writeJSON(w, code, map[string]any{"message": "logout exploded"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"data": []any{doctorUser, patientUser},
				"meta": map[string]any{"total": 12, "page": 2, "limit": 2, "totalPages": 6},
			}})
		})
		r.Post("/users", b.echoWithID("u-new", http.StatusCreated))
		r.Get("/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			user := map[string]any{}
			for k, v := range patientUser {
				user[k] = v
			}
			user["id"] = chi.URLParam(req, "id")
			writeJSON(w, http.StatusOK, user)
		})
		r.Patch("/admin/users/{id}", b.echoWithID("u-pat", http.StatusOK))
		r.Delete("/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"data": map[string]any{
				"totals":     map[string]any{"doctors": 3, "patients": 10, "prescriptions": 42},
				"byStatus":   map[string]any{"pending": 30, "consumed": 12},
				"byDay":      []any{map[string]any{"date": "2026-10-17", "count": 5}},
				"topDoctors": []any{map[string]any{"doctorId": "d1", "doctorName": "Dr. Ana", "specialty": "Cardiology", "count": 20}},
			}}})
		})

		r.Get("/patients", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, []any{
				map[string]any{"id": "p1", "birthDate": "1990-01-01", "user": patientUser},
			})
		})
		r.Get("/doctors", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []any{map[string]any{"id": "d1", "specialty": "Cardiology", "licenseNumber": "L-1"}},
				"meta": map[string]any{"total": 1, "page": 1, "limit": 10, "totalPages": 1},
			})
		})

		r.Post("/prescriptions", b.echoWithID("rx-new", http.StatusCreated))
		r.Get("/prescriptions", b.prescriptionList)
		r.Get("/prescriptions/me/prescriptions", b.prescriptionList)
		r.Get("/prescriptions/admin/prescriptions", b.prescriptionList)
		r.Post("/prescriptions/from-audio", b.handleAudio)
		r.Get("/prescriptions/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": prescription(chi.URLParam(req, "id"), "pending")})
		})
		r.Put("/prescriptions/{id}/consume", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": prescription(chi.URLParam(req, "id"), "consumed")})
		})
		r.Get("/prescriptions/{id}/pdf", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7 " + chi.URLParam(req, "id")))
		})
	})

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		b.mu.Lock()
		b.requests = append(b.requests, recorded{
			Method: req.Method,
			Path:   req.URL.EscapedPath(),
			Query:  req.URL.Query(),
			Header: req.Header.Clone(),
			Body:   string(body),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (b *backend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		valid := "Bearer " + b.access
		b.mu.Unlock()
		if req.Header.Get("Authorization") != valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized", "statusCode": 401})
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (b *backend) handleLogin(w http.ResponseWriter, req *http.Request) {
	var creds LoginCredentials
	if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
		return
	}
	if creds.Password != "secret1" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials", "statusCode": 401})
		return
	}

	b.mu.Lock()
	pair := map[string]any{"user": doctorUser, "accessToken": b.access, "refreshToken": b.refresh}
	b.mu.Unlock()

	switch creds.Email {
	case "nested@rx.test":
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"data": map[string]any{"data": pair}}})
	case "partial@rx.test":
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user": doctorUser, "accessToken": "only-access"}})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"path":   "/api/auth/login",
			"method": "POST",
			"data":   map[string]any{"data": pair},
		})
	}
}

func (b *backend) handleRefresh(w http.ResponseWriter, req *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(req.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshCalls++
	if b.refreshStatus != 0 || body.RefreshToken != b.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid refresh token"})
		return
	}
	b.access = fmt.Sprintf("a%d", b.refreshCalls+1)
	b.refresh = fmt.Sprintf("r%d", b.refreshCalls+1)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"accessToken": b.access, "refreshToken": b.refresh}})
}

func (b *backend) echoWithID(id string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
			return
		}
		body["id"] = id
		delete(body, "password")
		writeJSON(w, status, map[string]any{"data": body})
	}
}

func (b *backend) prescriptionList(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"data": []any{prescription("rx-1", "pending"), prescription("rx-2", "consumed")},
		"meta": map[string]any{"total": 2, "page": 1, "limit": 10, "totalPages": 1},
	}})
}

func (b *backend) handleAudio(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	file, header, err := req.FormFile(AudioFormField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)

	rx := prescription("rx-audio", "pending")
	rx["patientId"] = req.FormValue(PatientIDFormField)
	rx["notes"] = fmt.Sprintf("%s %s %d", header.Filename, header.Header.Get("Content-Type"), len(content))
	writeJSON(w, http.StatusCreated, map[string]any{"data": rx})
}

func prescription(id, status string) map[string]any {
	return map[string]any{
		"id":        id,
		"code":      "RX-" + id,
		"patientId": "p1",
		"authorId":  "d1",
		"diagnosis": "Hypertension",
		"status":    status,
		"createdAt": "2026-10-17T09:30:00Z",
		"items": []any{
			map[string]any{"medication": "Losartan", "dosage": "50mg", "quantity": 30},
		},
		"author": map[string]any{"id": "d1", "specialty": "Cardiology"},
	}
}

func (b *backend) last() recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(b.t, b.requests)
	return b.requests[len(b.requests)-1]
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) setAccess(token string) {
	b.mu.Lock()
	b.access = token
	b.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sessionEnds records the reasons the client reported.
type sessionEnds struct {
	mu      sync.Mutex
	reasons []httpclient.SessionEndReason
}

func (s *sessionEnds) all() []httpclient.SessionEndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]httpclient.SessionEndReason(nil), s.reasons...)
}

// newTestService builds a Service against b. A non-nil pair is stored up front.
func newTestService(t *testing.T, b *backend, pair *tokenstore.TokenPair) (*Service, *sessionEnds) {
	t.Helper()
	session := NewSession()
	ends := &sessionEnds{}

	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURL: b.server.URL,
		Logger:  logger.NewNopLogger(),
		OnSessionEnd: func(reason httpclient.SessionEndReason) {
			ends.mu.Lock()
			ends.reasons = append(ends.reasons, reason)
			ends.mu.Unlock()
			session.HandleSessionEnd(reason)
		},
	}, true)
	require.NoError(t, err)

	if pair != nil {
		require.NoError(t, client.Tokens().SetTokens(t.Context(), pair))
	}
	return NewService(client, session), ends
}

func signedIn(t *testing.T, b *backend) (*Service, *sessionEnds) {
	t.Helper()
	b.mu.Lock()
	pair := &tokenstore.TokenPair{AccessToken: b.access, RefreshToken: b.refresh}
	b.mu.Unlock()
	return newTestService(t, b, pair)
}

func (b *backend) refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}
