package client

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// matrixConcurrency limita o fan-out de requisições por usuário
const matrixConcurrency = 8

// Matrix é a matriz usuário×módulo: para cada usuário, o conjunto de IDs
// de módulos atribuídos.
type Matrix struct {
	mu   sync.RWMutex
	rows map[string]map[string]bool
}

func newMatrix() *Matrix {
	return &Matrix{rows: make(map[string]map[string]bool)}
}

// Has verifica se o usuário tem o módulo
func (m *Matrix) Has(userID, moduleID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[userID][moduleID]
}

// Modules retorna os IDs de módulos do usuário
func (m *Matrix) Modules(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row := m.rows[userID]
	ids := make([]string, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	return ids
}

func (m *Matrix) setRow(userID string, moduleIDs []string) {
	row := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		row[id] = true
	}

	m.mu.Lock()
	m.rows[userID] = row
	m.mu.Unlock()
}

func (m *Matrix) set(userID, moduleID string, assigned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		row = make(map[string]bool)
		m.rows[userID] = row
	}
	if assigned {
		row[moduleID] = true
	} else {
		delete(row, moduleID)
	}
}

// MatrixEngine carrega e altera a matriz de permissões do painel.
type MatrixEngine struct {
	client *Client
}

func NewMatrixEngine(client *Client) *MatrixEngine {
	return &MatrixEngine{client: client}
}

// LoadMatrix busca os módulos de cada usuário em paralelo. A falha de um
// usuário não derruba a carga: a linha dele fica vazia e o ID aparece em
// failed.
func (e *MatrixEngine) LoadMatrix(ctx context.Context, userIDs []string) (*Matrix, []string) {
	matrix := newMatrix()

	var mu sync.Mutex
	var failed []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(matrixConcurrency)

	for _, userID := range userIDs {
		g.Go(func() error {
			userModules, err := e.client.GetUserModules(ctx, userID)
			if err != nil {
				matrix.setRow(userID, nil)
				mu.Lock()
				failed = append(failed, userID)
				mu.Unlock()
				return nil
			}

			ids := make([]string, 0, len(userModules.Modules))
			for _, m := range userModules.Modules {
				ids = append(ids, m.ID)
			}
			matrix.setRow(userID, ids)
			return nil
		})
	}

	// As goroutines nunca retornam erro; Wait só sincroniza
	_ = g.Wait()

	return matrix, failed
}

// Toggle atribui ou revoga um módulo e atualiza a matriz local somente
// após o servidor confirmar.
func (e *MatrixEngine) Toggle(ctx context.Context, matrix *Matrix, userID, moduleID string, assign bool) error {
	var err error
	if assign {
		err = e.client.AssignModule(ctx, userID, moduleID)
	} else {
		err = e.client.UnassignModule(ctx, userID, moduleID)
	}
	if err != nil {
		return err
	}

	matrix.set(userID, moduleID, assign)
	return nil
}

// BulkAssign concede os módulos a todos os usuários informados (produto
// cartesiano usuário×módulo), uma chamada por usuário em paralelo, agregando
// o resultado. Sem transação: falhas parciais são contadas, não revertidas.
func (e *MatrixEngine) BulkAssign(ctx context.Context, matrix *Matrix, userIDs, moduleIDs []string) BulkResult {
	total := BulkResult{Requested: len(userIDs) * len(moduleIDs)}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(matrixConcurrency)

	for _, userID := range userIDs {
		g.Go(func() error {
			result, err := e.client.BulkAssignModules(ctx, userID, moduleIDs)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				total.Failed += len(moduleIDs)
				if total.FirstErr == "" {
					total.FirstErr = err.Error()
				}
				return nil
			}

			total.Succeeded += result.Succeeded
			total.Failed += result.Failed
			if total.FirstErr == "" {
				total.FirstErr = result.FirstErr
			}

			for _, moduleID := range moduleIDs {
				matrix.set(userID, moduleID, true)
			}
			return nil
		})
	}

	_ = g.Wait()
	return total
}

// RoleView agrega a matriz por papel: um módulo pertence à linha do papel
// somente quando TODOS os usuários daquele papel o possuem (interseção).
// Papéis sem usuários não aparecem.
func RoleView(matrix *Matrix, users []User) map[string][]string {
	byRole := make(map[string][]map[string]bool)

	matrix.mu.RLock()
	for _, user := range users {
		role := strings.ToLower(user.Role())
		if role == "" {
			continue
		}
		byRole[role] = append(byRole[role], matrix.rows[user.ID])
	}
	matrix.mu.RUnlock()

	view := make(map[string][]string, len(byRole))
	for role, rows := range byRole {
		var common []string
		for moduleID := range rows[0] {
			held := true
			for _, row := range rows[1:] {
				if !row[moduleID] {
					held = false
					break
				}
			}
			if held {
				common = append(common, moduleID)
			}
		}
		view[role] = common
	}

	return view
}
