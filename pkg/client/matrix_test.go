package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatrixTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/permissions/users/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		userID := parts[len(parts)-2]

		switch userID {
		case "broken":
			writeError(w, http.StatusInternalServerError, "boom")
		case "empty":
			writeEnvelope(w, http.StatusOK, UserModules{})
		default:
			writeEnvelope(w, http.StatusOK, UserModules{
				Modules: []Module{
					{ID: "m1", Name: "Dashboard"},
					{ID: "m2", Name: "Reports"},
				},
			})
		}
	})
	mux.HandleFunc("/api/permissions/bulk-assign", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string   `json:"userId"`
			ModuleIDs []string `json:"moduleIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.UserID == "broken" {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeEnvelope(w, http.StatusOK, BulkResult{
			Requested: len(req.ModuleIDs),
			Succeeded: len(req.ModuleIDs),
		})
	})
	mux.HandleFunc("/api/permissions/assign", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})
	mux.HandleFunc("/api/permissions/unassign", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := New(server.URL)
	c.Store().SetTokens("token", "refresh")
	return server, c
}

func TestLoadMatrixIsolatesFailures(t *testing.T) {
	_, c := newMatrixTestServer(t)
	engine := NewMatrixEngine(c)

	matrix, failed := engine.LoadMatrix(context.Background(), []string{"u1", "broken", "empty"})

	assert.Equal(t, []string{"broken"}, failed)

	assert.True(t, matrix.Has("u1", "m1"))
	assert.True(t, matrix.Has("u1", "m2"))

	// A linha do usuário com falha existe, mas vazia
	assert.Empty(t, matrix.Modules("broken"))
	assert.Empty(t, matrix.Modules("empty"))
}

func TestToggleUpdatesAfterServerConfirms(t *testing.T) {
	_, c := newMatrixTestServer(t)
	engine := NewMatrixEngine(c)

	matrix := newMatrix()

	require.NoError(t, engine.Toggle(context.Background(), matrix, "u1", "m9", true))
	assert.True(t, matrix.Has("u1", "m9"))

	require.NoError(t, engine.Toggle(context.Background(), matrix, "u1", "m9", false))
	assert.False(t, matrix.Has("u1", "m9"))
}

func TestBulkAssignAggregatesAcrossUsers(t *testing.T) {
	_, c := newMatrixTestServer(t)
	engine := NewMatrixEngine(c)

	matrix := newMatrix()
	result := engine.BulkAssign(context.Background(), matrix, []string{"u1", "broken", "u2"}, []string{"m1", "m2"})

	assert.Equal(t, 6, result.Requested)
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.NotEmpty(t, result.FirstErr)

	assert.True(t, matrix.Has("u1", "m1"))
	assert.True(t, matrix.Has("u2", "m2"))
	assert.False(t, matrix.Has("broken", "m1"))
}

func TestRoleViewIntersectsModules(t *testing.T) {
	matrix := newMatrix()
	matrix.setRow("u1", []string{"m1", "m2", "m3"})
	matrix.setRow("u2", []string{"m2", "m3"})
	matrix.setRow("u3", []string{"m9"})

	users := []User{
		{ID: "u1", UserType: &UserType{Name: "manager"}},
		{ID: "u2", UserType: &UserType{Name: "Manager"}},
		{ID: "u3", UserType: &UserType{Name: "user"}},
	}

	view := RoleView(matrix, users)

	// Interseção dos módulos de todos os managers
	assert.ElementsMatch(t, []string{"m2", "m3"}, view["manager"])
	assert.ElementsMatch(t, []string{"m9"}, view["user"])
	assert.NotContains(t, view, "admin")
}

func TestRoleViewEmptyIntersection(t *testing.T) {
	matrix := newMatrix()
	matrix.setRow("u1", []string{"m1"})
	matrix.setRow("u2", []string{"m2"})

	users := []User{
		{ID: "u1", UserType: &UserType{Name: "manager"}},
		{ID: "u2", UserType: &UserType{Name: "manager"}},
	}

	view := RoleView(matrix, users)
	assert.Empty(t, view["manager"])
}

func TestRoleViewSkipsUsersWithoutRole(t *testing.T) {
	matrix := newMatrix()
	matrix.setRow("u1", []string{"m1"})

	users := []User{{ID: "u1"}}

	view := RoleView(matrix, users)
	assert.Empty(t, view)
}
