package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	// refreshLead é a antecedência da renovação proativa
	refreshLead = 5 * time.Minute
	// idleThreshold é o tempo sem atividade que dispara a revalidação
	idleThreshold = 30 * time.Minute
	// idleCheckInterval é a frequência do verificador de inatividade
	idleCheckInterval = 5 * time.Minute
)

// refreshCheckInterval é a frequência do verificador de expiração
var refreshCheckInterval = time.Minute

// SessionManager mantém a sessão viva: renova o access token antes de
// expirar e revalida a conta no servidor após períodos de inatividade.
// Touch deve ser chamado a cada interação do usuário.
type SessionManager struct {
	client *Client

	mu           sync.Mutex
	otpSent      map[string]bool
	lastActivity time.Time
	accessExpiry time.Time

	stopOnce sync.Once
	stop     chan struct{}
	started  bool
}

func NewSessionManager(client *Client) *SessionManager {
	return &SessionManager{
		client:  client,
		otpSent: make(map[string]bool),
		stop:    make(chan struct{}),
	}
}

// SendOTP solicita o código e registra o envio para o email. Login sem um
// envio prévio é rejeitado localmente.
func (m *SessionManager) SendOTP(ctx context.Context, email string) error {
	if err := m.client.SendOTP(ctx, email); err != nil {
		return err
	}

	m.mu.Lock()
	m.otpSent[email] = true
	m.mu.Unlock()
	return nil
}

// Login autentica. Exige um SendOTP prévio para o mesmo email; sem ele a
// chamada falha com ErrOTPNotSent antes de tocar a rede.
func (m *SessionManager) Login(ctx context.Context, email, password, otp string) (*AuthResult, error) {
	m.mu.Lock()
	sent := m.otpSent[email]
	m.mu.Unlock()

	if !sent {
		return nil, ErrOTPNotSent
	}

	result, err := m.client.Login(ctx, email, password, otp)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	delete(m.otpSent, email)
	m.lastActivity = time.Now()
	m.accessExpiry = accessExpiryFrom(result)
	m.mu.Unlock()

	return result, nil
}

func accessExpiryFrom(result *AuthResult) time.Time {
	// A expiração da sessão limita a validade; o access token costuma
	// expirar antes, mas a renovação proativa cobre os dois casos
	if result.Session != nil {
		return time.Unix(result.Session.Expiry, 0)
	}
	return time.Now().Add(time.Hour)
}

// SetAccessExpiry informa a expiração do access token corrente, quando o
// chamador a conhece (ex: decodificada do próprio JWT)
func (m *SessionManager) SetAccessExpiry(expiry time.Time) {
	m.mu.Lock()
	m.accessExpiry = expiry
	m.mu.Unlock()
}

// Touch registra atividade do usuário
func (m *SessionManager) Touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// Start inicia os verificadores em background. Stop encerra.
func (m *SessionManager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.refreshLoop()
	go m.idleLoop()
}

// Stop encerra os verificadores
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// Logout encerra a sessão e para os verificadores
func (m *SessionManager) Logout(ctx context.Context) error {
	m.Stop()
	return m.client.Logout(ctx)
}

// RefreshUser recarrega o perfil do servidor e valida a estrutura do
// payload. Um usuário sem id/nome indica conta corrompida ou resposta
// adulterada: a sessão local é derrubada com ErrDataIntegrity.
func (m *SessionManager) RefreshUser(ctx context.Context) (*User, error) {
	user, err := m.client.GetUserData(ctx)
	if err != nil {
		return nil, err
	}

	if user == nil || user.ID == "" || user.FirstName == "" || user.LastName == "" {
		m.client.forceLogout()
		return nil, ErrDataIntegrity
	}

	m.client.Store().SetUser(user)

	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()

	return user, nil
}

// refreshLoop renova o token quando faltam refreshLead para expirar
func (m *SessionManager) refreshLoop() {
	ticker := time.NewTicker(refreshCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			expiry := m.accessExpiry
			m.mu.Unlock()

			if expiry.IsZero() || time.Until(expiry) > refreshLead {
				continue
			}

			// Expiração já passou: a sessão está morta, não há o que
			// renovar. Stop derruba o idleLoop junto.
			if time.Now().After(expiry) {
				m.client.forceLogout()
				m.Stop()
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			err := m.client.Refresh(ctx)
			cancel()

			if err != nil {
				log.Printf("proactive token refresh failed: %v", err)
				continue
			}

			m.mu.Lock()
			m.accessExpiry = SessionExpiry(m.client.Store())
			m.mu.Unlock()
		}
	}
}

// idleLoop revalida a conta no servidor quando o usuário fica inativo por
// mais de idleThreshold. Falha na revalidação derruba a sessão local.
func (m *SessionManager) idleLoop() {
	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			last := m.lastActivity
			m.mu.Unlock()

			if last.IsZero() || time.Since(last) < idleThreshold {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			_, err := m.RefreshUser(ctx)
			cancel()

			if err != nil {
				if errors.Is(err, ErrDataIntegrity) || IsKind(err, KindAuth) || IsKind(err, KindPermission) {
					m.client.forceLogout()
					m.Stop()
					return
				}
				// Falha de rede: tenta de novo no próximo ciclo
				log.Printf("idle revalidation failed: %v", err)
			}
		}
	}
}
