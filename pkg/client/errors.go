package client

import (
	"errors"
	"fmt"
)

// Kind classifica as falhas retornadas pelo SDK.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindServer     Kind = "server"
	KindUnknown    Kind = "unknown"
)

// ErrDataIntegrity indica uma resposta 2xx cujo payload falhou na validação
// estrutural (usuário sem id/nome). A sessão local é derrubada: um payload
// malformado nunca é aceito.
var ErrDataIntegrity = errors.New("malformed user payload")

// ErrOTPNotSent é retornado localmente quando o login é tentado antes do
// envio do código. Nenhuma chamada de rede acontece nesse caso.
var ErrOTPNotSent = errors.New("please send OTP first")

// ErrLoggedOut indica que a sessão local foi encerrada e a operação exige
// autenticação.
var ErrLoggedOut = errors.New("not authenticated")

// APIError carrega a resposta de erro da API junto com a classificação.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

func kindForStatus(status int) Kind {
	switch {
	case status == 401:
		return KindAuth
	case status == 403:
		return KindPermission
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status >= 400 && status < 500:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// IsKind verifica se err é um APIError da classificação informada
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
