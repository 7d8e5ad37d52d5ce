package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequiresSendOTPFirst(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	m := NewSessionManager(New(server.URL))

	_, err := m.Login(context.Background(), "a@b.c", "secret", "123456")
	assert.ErrorIs(t, err, ErrOTPNotSent)
	assert.Zero(t, atomic.LoadInt32(&calls), "login without OTP must not touch the network")
}

func TestLoginAfterSendOTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, AuthResult{
			User:         &User{ID: "u1"},
			Session:      &Session{ID: "s1", UserID: "u1", Expiry: time.Now().Add(24 * time.Hour).Unix()},
			AccessToken:  "access",
			RefreshToken: "refresh",
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	m := NewSessionManager(New(server.URL))
	ctx := context.Background()

	require.NoError(t, m.SendOTP(ctx, "a@b.c"))

	result, err := m.Login(ctx, "a@b.c", "secret", "123456")
	require.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)
}

func TestOTPPreconditionIsPerEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	m := NewSessionManager(New(server.URL))
	ctx := context.Background()

	require.NoError(t, m.SendOTP(ctx, "first@b.c"))

	_, err := m.Login(ctx, "second@b.c", "secret", "123456")
	assert.ErrorIs(t, err, ErrOTPNotSent)
}

func TestOTPPreconditionConsumedOnLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, AuthResult{
			User:        &User{ID: "u1"},
			Session:     &Session{ID: "s1", Expiry: time.Now().Add(time.Hour).Unix()},
			AccessToken: "access",
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	m := NewSessionManager(New(server.URL))
	ctx := context.Background()

	require.NoError(t, m.SendOTP(ctx, "a@b.c"))
	_, err := m.Login(ctx, "a@b.c", "secret", "123456")
	require.NoError(t, err)

	// O registro de envio é consumido pelo login; um segundo login exige
	// novo SendOTP
	_, err = m.Login(ctx, "a@b.c", "secret", "654321")
	assert.ErrorIs(t, err, ErrOTPNotSent)
}

func TestFailedLoginKeepsOTPPrecondition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	})
	var attempts int32
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, AuthResult{
			User:        &User{ID: "u1"},
			Session:     &Session{ID: "s1", Expiry: time.Now().Add(time.Hour).Unix()},
			AccessToken: "access",
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	m := NewSessionManager(New(server.URL))
	ctx := context.Background()

	require.NoError(t, m.SendOTP(ctx, "a@b.c"))

	_, err := m.Login(ctx, "a@b.c", "wrong", "123456")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuth))

	// Senha errada não queima o envio do OTP
	_, err = m.Login(ctx, "a@b.c", "right", "123456")
	require.NoError(t, err)
}

func TestSessionManagerStartStop(t *testing.T) {
	m := NewSessionManager(New("http://localhost:0"))

	m.Start()
	m.Start() // idempotente
	m.Touch()
	m.SetAccessExpiry(time.Now().Add(time.Hour))
	m.Stop()
	m.Stop() // idempotente
}

func TestExpiredSessionStopsBothLoops(t *testing.T) {
	restore := refreshCheckInterval
	refreshCheckInterval = 5 * time.Millisecond
	defer func() { refreshCheckInterval = restore }()

	var loggedOut int32
	c := New("http://localhost:0", WithLogoutHandler(func() {
		atomic.StoreInt32(&loggedOut, 1)
	}))
	c.Store().SetTokens("token", "refresh")

	m := NewSessionManager(c)
	m.SetAccessExpiry(time.Now().Add(-time.Minute))
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&loggedOut) == 1
	}, time.Second, 5*time.Millisecond, "expired session must force logout")

	// O logout forçado encerra os dois loops, não só o de renovação
	select {
	case <-m.stop:
	case <-time.After(time.Second):
		t.Fatal("stop channel must close after forced logout")
	}
	assert.Empty(t, c.Store().AccessToken())
}

func TestRefreshUserRejectsMalformedPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		// 200 com usuário sem firstName
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"user": &User{ID: "u1", Email: "a@b.c"},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	loggedOut := false
	c := New(server.URL, WithLogoutHandler(func() { loggedOut = true }))
	c.Store().SetTokens("token", "refresh")
	c.Store().SetUser(&User{ID: "u1", FirstName: "A", LastName: "B"})

	m := NewSessionManager(c)

	_, err := m.RefreshUser(context.Background())
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.True(t, loggedOut, "malformed payload must force logout")
	assert.Empty(t, c.Store().AccessToken())
}

func TestRefreshUserAcceptsValidPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"user": &User{ID: "u1", FirstName: "Ana", LastName: "Lima", Email: "a@b.c"},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL)
	c.Store().SetTokens("token", "refresh")

	m := NewSessionManager(c)

	user, err := m.RefreshUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FirstName)
	require.NotNil(t, c.Store().User())
	assert.Equal(t, "u1", c.Store().User().ID)
}
