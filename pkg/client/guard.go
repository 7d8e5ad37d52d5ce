package client

import "strings"

// Decision é o resultado de três estados da avaliação de acesso. Undecided
// cobre o intervalo em que o papel ainda não foi carregado: a interface
// deve segurar a renderização em vez de negar prematuramente.
type Decision int

const (
	Undecided Decision = iota
	Allowed
	Denied
)

const roleSuperadmin = "superadmin"

// roleRank espelha a hierarquia fixa do servidor
var roleRank = map[string]int{
	roleSuperadmin: 4,
	"admin":        3,
	"manager":      2,
	"user":         1,
}

// CanAccess decide se um papel entra em uma área restrita a allowedRoles.
// Comparação case-insensitive; superadmin sempre passa; papel vazio nega.
func CanAccess(role string, allowedRoles []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(role))
	if normalized == "" {
		return false
	}
	if normalized == roleSuperadmin {
		return true
	}
	for _, allowed := range allowedRoles {
		if normalized == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// RoleRank retorna a posição do papel na hierarquia (0 para desconhecidos)
func RoleRank(role string) int {
	return roleRank[strings.ToLower(strings.TrimSpace(role))]
}

// Guard avalia o acesso do usuário armazenado no TokenStore.
type Guard struct {
	store TokenStore
}

func NewGuard(store TokenStore) *Guard {
	return &Guard{store: store}
}

// Evaluate retorna a decisão de três estados para o usuário corrente.
// Sem usuário carregado ainda (sessão em restauração) retorna Undecided;
// sem sessão alguma retorna Denied.
func (g *Guard) Evaluate(allowedRoles []string) Decision {
	if g.store.AccessToken() == "" {
		return Denied
	}

	user := g.store.User()
	if user == nil {
		return Undecided
	}

	if CanAccess(user.Role(), allowedRoles) {
		return Allowed
	}
	return Denied
}
