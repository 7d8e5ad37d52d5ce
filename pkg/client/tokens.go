package client

import (
	"sync"
	"time"
)

// TokenStore guarda os tokens e o snapshot de sessão do lado do cliente.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string)
	Session() *Session
	SetSession(session *Session)
	User() *User
	SetUser(user *User)
	Clear()
}

// MemoryTokenStore é a implementação padrão, em memória.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	session *Session
	user    *User
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
}

func (s *MemoryTokenStore) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *MemoryTokenStore) SetSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

func (s *MemoryTokenStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemoryTokenStore) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Clear apaga tokens, sessão e usuário (logout)
func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.session = nil
	s.user = nil
}

// SessionExpiry retorna o instante de expiração da sessão armazenada,
// zero time quando não há sessão.
func SessionExpiry(store TokenStore) time.Time {
	session := store.Session()
	if session == nil {
		return time.Time{}
	}
	return time.Unix(session.Expiry, 0)
}
