// httpclient/fakeapi_test.go
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a backend that issues rotating credential pairs and rejects stale ones.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu           sync.Mutex
	access       string
	refresh      string
	generation   int
	refreshDelay time.Duration

	refreshStatus atomic.Int32
	refreshCalls  atomic.Int32
	requests      atomic.Int32

	lastBody   atomic.Value
	lastHeader atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t, access: "access-0", refresh: "refresh-0"}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			api.requests.Add(1)
			api.lastHeader.Store(req.Header.Clone())
			next.ServeHTTP(w, req)
		})
	})

	r.Post("/auth/refresh", api.handleRefresh)
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "login must not carry a bearer"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials", "statusCode": 401})
	})

	r.Group(func(r chi.Router) {
		r.Use(api.requireBearer)
		r.Get("/auth/profile", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "role": "doctor"}})
		})
		r.Get("/prescriptions", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"data": []int{1, 2, 3},
				"meta": map[string]any{"total": 3},
			}})
		})
		r.Get("/prescriptions/{id}/pdf", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rx-%s.pdf"`, chi.URLParam(req, "id")))
			_, _ = w.Write([]byte("%PDF-1.4 fake"))
		})
		r.Post("/echo", func(w http.ResponseWriter, req *http.Request) {
			body, _ := io.ReadAll(req.Body)
			api.lastBody.Store(string(body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		})
		r.Post("/prescriptions/from-audio", func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
				return
			}
			file, header, err := req.FormFile("audio")
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
				return
			}
			defer file.Close()
			content, _ := io.ReadAll(file)
			writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
				"patientId":   req.FormValue("patientId"),
				"fileName":    header.Filename,
				"contentType": header.Header.Get("Content-Type"),
				"size":        len(content),
			}})
		})
		r.Post("/uploads/receipt", func(w http.ResponseWriter, req *http.Request) {
			_, _ = io.Copy(io.Discard, req.Body)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("stored"))
		})
		r.Get("/always-401", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Forbidden resource"})
		})
		r.Get("/broken", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("stack trace"))
		})
		r.Delete("/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		a.mu.Lock()
		valid := "Bearer " + a.access
		a.mu.Unlock()
		if req.Header.Get("Authorization") != valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized", "statusCode": 401})
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (a *fakeAPI) handleRefresh(w http.ResponseWriter, req *http.Request) {
	a.refreshCalls.Add(1)
	if req.Header.Get("Authorization") != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "refresh must not carry a bearer"})
		return
	}
	if code := int(a.refreshStatus.Load()); code != 0 {
		writeJSON(w, code, map[string]any{"message": "Invalid refresh token"})
		return
	}
	if a.refreshDelay > 0 {
		time.Sleep(a.refreshDelay)
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if body.RefreshToken != a.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid refresh token"})
		return
	}
	a.generation++
	a.access = fmt.Sprintf("access-%d", a.generation)
	a.refresh = fmt.Sprintf("refresh-%d", a.generation)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"accessToken":  a.access,
		"refreshToken": a.refresh,
	}})
}

// current returns the pair the backend accepts right now.
func (a *fakeAPI) current() tokenstore.TokenPair {
	a.mu.Lock()
	defer a.mu.Unlock()
	return tokenstore.TokenPair{AccessToken: a.access, RefreshToken: a.refresh}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newTestClient builds a client against api with the given stored pair.
func newTestClient(t *testing.T, api *fakeAPI, pair *tokenstore.TokenPair, mutate func(*ClientConfig)) *Client {
	t.Helper()
	config := ClientConfig{
		BaseURL:               api.server.URL,
		Logger:                logger.NewNopLogger(),
		MaxConcurrentRequests: 20,
	}
	if mutate != nil {
		mutate(&config)
	}
	client, err := BuildClient(config, true)
	require.NoError(t, err)
	if pair != nil {
		require.NoError(t, client.Tokens().SetTokens(t.Context(), pair))
	}
	return client
}

func headerOf(a *fakeAPI) http.Header {
	h, _ := a.lastHeader.Load().(http.Header)
	return h
}

func bodyOf(a *fakeAPI) string {
	s, _ := a.lastBody.Load().(string)
	return strings.TrimSpace(s)
}
