package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ikudjoi/fluentmigrator/internal/api/http/dto"
	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/filter"
	"github.com/ikudjoi/fluentmigrator/internal/loader"
	"github.com/ikudjoi/fluentmigrator/internal/migration"
	"github.com/ikudjoi/fluentmigrator/internal/registry"
	"github.com/ikudjoi/fluentmigrator/internal/source"
)

const testToken = "test-token"

// stubLoader returns a fixed outcome
type stubLoader struct {
	reg *registry.Registry
	err error
}

func (s *stubLoader) LoadMigrations() (*registry.Registry, error) {
	return s.reg, s.err
}

func newScript(version int64, name string) *migration.Script {
	return &migration.Script{
		Version:    version,
		Name:       name,
		Backend:    "postgresql",
		Connection: "core",
		UpSQL:      "CREATE TABLE " + name + "();",
		DownSQL:    "DROP TABLE " + name + ";",
	}
}

func newRouter(l RegistryLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(l, testToken).RegisterRoutes(router)
	return router
}

func newTestLoader() RegistryLoader {
	src := source.NewSet(newScript(3, "orders"), newScript(1, "users"), newScript(2, "roles"))
	return loader.New(src, filter.Options{Namespace: "postgresql/core"}, conventions.NewDefault())
}

func do(t *testing.T, router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListMigrations(t *testing.T) {
	router := newRouter(newTestLoader())

	w := do(t, router, "/api/v1/migrations", testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.MigrationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	require.Equal(t, int64(1), resp.Items[0].Version)
	require.Equal(t, int64(2), resp.Items[1].Version)
	require.Equal(t, int64(3), resp.Items[2].Version)
	require.Equal(t, "1: Script", resp.Items[0].Name)
	require.Equal(t, "users", resp.Items[0].Description)
	require.Equal(t, "default", resp.Items[0].TransactionBehavior)
	require.Equal(t, "postgresql", resp.Items[0].Backend)
	require.Equal(t, "core", resp.Items[0].Connection)
}

func TestListMigrations_Since(t *testing.T) {
	router := newRouter(newTestLoader())

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{name: "since first", query: "?since=1", wantCode: http.StatusOK, wantLen: 2},
		{name: "since last", query: "?since=3", wantCode: http.StatusOK, wantLen: 0},
		{name: "invalid", query: "?since=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "/api/v1/migrations"+tt.query, testToken)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp dto.MigrationListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Len(t, resp.Items, tt.wantLen)
		})
	}
}

func TestGetMigration(t *testing.T) {
	router := newRouter(newTestLoader())

	w := do(t, router, "/api/v1/migrations/2", testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.MigrationDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Version)
	require.Equal(t, "CREATE TABLE roles();", resp.UpSQL)
	require.Equal(t, "DROP TABLE roles;", resp.DownSQL)
	require.Equal(t, "roles", resp.Traits[conventions.TraitDescription])

	w = do(t, router, "/api/v1/migrations/42", testToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "/api/v1/migrations/latest", testToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthentication(t *testing.T) {
	router := newRouter(newTestLoader())

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong token", header: "Bearer nope"},
		{name: "wrong scheme", header: "Basic dGVzdDp0ZXN0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/migrations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "missing", err: registry.ErrMissingMigrations, wantCode: http.StatusNotFound},
		{name: "duplicate", err: &registry.DuplicateVersionError{Version: 20230101000000}, wantCode: http.StatusConflict},
		{name: "source failure", err: errors.New("permission denied"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&stubLoader{err: tt.err})
			w := do(t, router, "/api/v1/migrations", testToken)
			require.Equal(t, tt.wantCode, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(newTestLoader()), "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, float64(3), body["migrations"])

	w = do(t, newRouter(&stubLoader{err: registry.ErrMissingMigrations}), "/api/v1/health", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBadRequestBeforeLoad(t *testing.T) {
	router := newRouter(&stubLoader{err: registry.ErrMissingMigrations})

	tests := []struct {
		name string
		path string
	}{
		{name: "invalid since", path: "/api/v1/migrations?since=abc"},
		{name: "invalid version", path: "/api/v1/migrations/latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.path, testToken)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
