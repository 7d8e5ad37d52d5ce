package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 30 * time.Second

// Client é o gateway HTTP dos portais. Todas as chamadas autenticadas
// passam por aqui: o bearer token é anexado automaticamente e um 401
// dispara uma única renovação de token compartilhada entre as chamadas
// concorrentes, com retry único da requisição original.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	// refreshGroup colapsa renovações concorrentes em uma só
	refreshGroup singleflight.Group

	// onLogout é chamado quando a renovação falha e a sessão local é
	// descartada
	onLogout func()
}

// Option configura o Client.
type Option func(*Client)

// WithHTTPClient substitui o *http.Client interno
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenStore substitui o armazenamento de tokens padrão em memória
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLogoutHandler registra o callback disparado no logout forçado
func WithLogoutHandler(fn func()) Option {
	return func(c *Client) {
		c.onLogout = fn
	}
}

// NewFromEnv cria o cliente a partir da variável de ambiente API_BASE_URL
func NewFromEnv(opts ...Option) *Client {
	return New(os.Getenv("API_BASE_URL"), opts...)
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store expõe o TokenStore do cliente
func (c *Client) Store() TokenStore {
	return c.store
}

// do executa a requisição. Com auth=true o bearer token é anexado e um 401
// é tratado com renovação + retry único.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, auth bool) error {
	resp, status, err := c.roundTrip(ctx, method, path, body, auth)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && auth {
		if err := c.refreshTokens(ctx); err != nil {
			c.forceLogout()
			return err
		}
		resp, status, err = c.roundTrip(ctx, method, path, body, auth)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// O token recém-renovado também foi rejeitado
			c.forceLogout()
			return &APIError{Kind: KindAuth, StatusCode: status, Message: resp.Message, Detail: resp.Error}
		}
	}

	if status < 200 || status >= 300 {
		return &APIError{
			Kind:       kindForStatus(status),
			StatusCode: status,
			Message:    resp.Message,
			Detail:     resp.Error,
		}
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body interface{}, auth bool) (*envelope, int, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if auth {
		token := c.store.AccessToken()
		if token == "" {
			return nil, 0, ErrLoggedOut
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &APIError{Kind: KindNetwork, StatusCode: 0, Message: "request failed", Detail: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Corpo não-JSON (proxy, gateway); classifica pelo status
		env = envelope{Message: resp.Status}
	}

	return &env, resp.StatusCode, nil
}

// refreshTokens renova o par de tokens. Chamadas concorrentes compartilham
// a mesma renovação em andamento.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		refresh := c.store.RefreshToken()
		if refresh == "" {
			return nil, ErrLoggedOut
		}

		var pair TokenPair
		body := map[string]string{"refreshToken": refresh}
		if err := c.do(ctx, http.MethodPost, "/api/auth/refresh-token", body, &pair, false); err != nil {
			return nil, err
		}

		c.store.SetTokens(pair.AccessToken, pair.RefreshToken)
		return nil, nil
	})
	return err
}

func (c *Client) forceLogout() {
	c.store.Clear()
	if c.onLogout != nil {
		c.onLogout()
	}
}

// --- Auth ---

// SendOTP solicita o envio de um código para o email
func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/send-otp", body, nil, false)
}

// VerifyOTP confere o código sem consumi-lo
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.do(ctx, http.MethodPost, "/api/auth/verify-otp", body, nil, false)
}

// Login autentica e armazena tokens, sessão e usuário no store
func (c *Client) Login(ctx context.Context, email, password, otp string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password, "otp": otp}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result, false); err != nil {
		return nil, err
	}

	c.adoptAuth(&result)
	return &result, nil
}

// Register cria uma conta no portal de usuários
func (c *Client) Register(ctx context.Context, req map[string]string) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &result, false); err != nil {
		return nil, err
	}

	c.adoptAuth(&result)
	return &result, nil
}

// GoogleLogin autentica com um ID token do Google
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	body := map[string]string{"token": idToken}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/google", body, &result, false); err != nil {
		return nil, err
	}

	c.adoptAuth(&result)
	return &result, nil
}

func (c *Client) adoptAuth(result *AuthResult) {
	c.store.SetTokens(result.AccessToken, result.RefreshToken)
	c.store.SetSession(result.Session)
	c.store.SetUser(result.User)
}

// Refresh força uma renovação de tokens fora do fluxo de 401
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.refreshTokens(ctx); err != nil {
		c.forceLogout()
		return err
	}
	return nil
}

// Logout encerra a sessão no servidor e limpa o estado local. O estado
// local é limpo mesmo quando a chamada falha: uma falha de rede no logout
// nunca deixa o cliente autenticado.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
	c.store.Clear()
	return err
}

// LogoutAll encerra todas as sessões do usuário em todos os dispositivos.
// Como no Logout, o estado local é limpo incondicionalmente.
func (c *Client) LogoutAll(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout-all", nil, nil, true)
	c.store.Clear()
	return err
}

// ForgotPassword redefine a senha com um OTP previamente enviado
func (c *Client) ForgotPassword(ctx context.Context, email, otp, newPassword string) error {
	body := map[string]string{"email": email, "otp": otp, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", body, nil, false)
}

// GetUserData retorna o perfil corrente do servidor
func (c *Client) GetUserData(ctx context.Context) (*User, error) {
	var payload struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/data", nil, &payload, true); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// --- Users ---

// ListUsers retorna a página de usuários
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*UserList, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var list UserList
	if err := c.do(ctx, http.MethodGet, "/api/users?"+query.Encode(), nil, &list, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// --- Modules ---

// ListModules retorna todos os módulos (lista plana)
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var payload struct {
		Modules []Module `json:"modules"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/modules", nil, &payload, true); err != nil {
		return nil, err
	}
	return payload.Modules, nil
}

// GetMyModules retorna os módulos do usuário autenticado
func (c *Client) GetMyModules(ctx context.Context) (*UserModules, error) {
	var payload UserModules
	if err := c.do(ctx, http.MethodGet, "/api/permissions/my-modules", nil, &payload, true); err != nil {
		return nil, err
	}
	return &payload, nil
}

// --- Permissions ---

// GetUserModules retorna os módulos atribuídos a um usuário
func (c *Client) GetUserModules(ctx context.Context, userID string) (*UserModules, error) {
	var payload UserModules
	if err := c.do(ctx, http.MethodGet, "/api/permissions/users/"+userID+"/modules", nil, &payload, true); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AssignModule concede um módulo a um usuário
func (c *Client) AssignModule(ctx context.Context, userID, moduleID string) error {
	body := map[string]string{"userId": userID, "moduleId": moduleID}
	return c.do(ctx, http.MethodPost, "/api/permissions/assign", body, nil, true)
}

// UnassignModule revoga um módulo de um usuário
func (c *Client) UnassignModule(ctx context.Context, userID, moduleID string) error {
	body := map[string]string{"userId": userID, "moduleId": moduleID}
	return c.do(ctx, http.MethodPost, "/api/permissions/unassign", body, nil, true)
}

// BulkAssignModules concede vários módulos a um usuário
func (c *Client) BulkAssignModules(ctx context.Context, userID string, moduleIDs []string) (*BulkResult, error) {
	body := map[string]interface{}{"userId": userID, "moduleIds": moduleIDs}

	var result BulkResult
	if err := c.do(ctx, http.MethodPost, "/api/permissions/bulk-assign", body, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}
