package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Message: http.StatusText(status),
		Data:    payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func TestConcurrent401SharesOneRefresh(t *testing.T) {
	const workers = 8

	var refreshCalls int32
	var barrier sync.WaitGroup
	barrier.Add(workers)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer fresh" {
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"user": &User{ID: "u1", Email: "a@b.c"},
			})
			return
		}
		// Segura até todas as chamadas chegarem com o token velho, para
		// que os 401 disparem juntos
		barrier.Done()
		barrier.Wait()
		writeError(w, http.StatusUnauthorized, "expired")
	})
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(100 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, TokenPair{AccessToken: "fresh", RefreshToken: "fresh-r"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL)
	c.Store().SetTokens("stale", "refresh-token")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetUserData(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "concurrent 401s must share one refresh")
	assert.Equal(t, "fresh", c.Store().AccessToken())
}

func TestRetryOnceAfterRefresh(t *testing.T) {
	var dataCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		if r.Header.Get("Authorization") == "Bearer fresh" {
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"user": &User{ID: "u1"}})
			return
		}
		writeError(w, http.StatusUnauthorized, "expired")
	})
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, TokenPair{AccessToken: "fresh", RefreshToken: ""})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL)
	c.Store().SetTokens("stale", "refresh-token")

	user, err := c.GetUserData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dataCalls), "original request retried exactly once")

	// Refresh sem novo refresh token mantém o anterior
	assert.Equal(t, "refresh-token", c.Store().RefreshToken())
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "expired")
	})
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "refresh expired")
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	loggedOut := false
	c := New(server.URL, WithLogoutHandler(func() { loggedOut = true }))
	c.Store().SetTokens("stale", "stale-refresh")
	c.Store().SetUser(&User{ID: "u1"})

	_, err := c.GetUserData(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuth))

	assert.True(t, loggedOut, "logout handler must fire")
	assert.Empty(t, c.Store().AccessToken())
	assert.Empty(t, c.Store().RefreshToken())
	assert.Nil(t, c.Store().User())
}

func TestUnauthenticatedCallFailsLocally(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := New(server.URL)

	_, err := c.GetUserData(context.Background())
	assert.ErrorIs(t, err, ErrLoggedOut)
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call without a token")
}

func TestErrorKindMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/permissions/assign", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "role not allowed")
	})
	mux.HandleFunc("/api/permissions/unassign", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "assignment not found")
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL)
	c.Store().SetTokens("token", "refresh")

	err := c.AssignModule(context.Background(), "u1", "m1")
	assert.True(t, IsKind(err, KindPermission))

	err = c.UnassignModule(context.Background(), "u1", "m1")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestKindForStatus(t *testing.T) {
	tests := map[int]Kind{
		http.StatusUnauthorized:        KindAuth,
		http.StatusForbidden:           KindPermission,
		http.StatusNotFound:            KindNotFound,
		http.StatusConflict:            KindConflict,
		http.StatusBadRequest:          KindValidation,
		http.StatusUnprocessableEntity: KindValidation,
		http.StatusInternalServerError: KindServer,
		http.StatusServiceUnavailable:  KindServer,
		// Fora das faixas conhecidas (redirects, informativos) não é erro
		// do servidor
		http.StatusMovedPermanently: KindUnknown,
		http.StatusContinue:         KindUnknown,
	}

	for status, want := range tests {
		assert.Equal(t, want, kindForStatus(status), "status %d", status)
	}
}

func TestLoginStoresSessionState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.c", req["email"])
		assert.Equal(t, "123456", req["otp"])

		writeEnvelope(w, http.StatusOK, AuthResult{
			User:         &User{ID: "u1", Email: "a@b.c", UserType: &UserType{Name: "admin"}},
			Session:      &Session{ID: "s1", UserID: "u1", Expiry: time.Now().Add(24 * time.Hour).Unix()},
			AccessToken:  "access",
			RefreshToken: "refresh",
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL)

	result, err := c.Login(context.Background(), "a@b.c", "secret", "123456")
	require.NoError(t, err)
	assert.Equal(t, "admin", result.User.Role())

	assert.Equal(t, "access", c.Store().AccessToken())
	assert.Equal(t, "refresh", c.Store().RefreshToken())
	require.NotNil(t, c.Store().Session())
	assert.Equal(t, "s1", c.Store().Session().ID)
	require.NotNil(t, c.Store().User())
}
