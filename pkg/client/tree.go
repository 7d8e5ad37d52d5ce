package client

import "sort"

// BuildTree monta a árvore de módulos a partir da lista plana. Módulos com
// parentId inexistente na lista viram raízes (um pai deletado não pode
// esconder os filhos). Irmãos são ordenados por nome. A função não detecta
// ciclos: nós já visitados não são reinseridos.
func BuildTree(modules []Module) []Module {
	byID := make(map[string]Module, len(modules))
	children := make(map[string][]string)

	for _, m := range modules {
		m.Children = nil
		byID[m.ID] = m
	}

	var rootIDs []string
	for _, m := range modules {
		if m.ParentID == nil || *m.ParentID == m.ID {
			rootIDs = append(rootIDs, m.ID)
			continue
		}
		if _, ok := byID[*m.ParentID]; !ok {
			// Pai ausente: promove a raiz
			rootIDs = append(rootIDs, m.ID)
			continue
		}
		children[*m.ParentID] = append(children[*m.ParentID], m.ID)
	}

	byName := func(ids []string) {
		sort.Slice(ids, func(i, j int) bool {
			return byID[ids[i]].Name < byID[ids[j]].Name
		})
	}

	seen := make(map[string]bool, len(modules))

	var build func(id string) Module
	build = func(id string) Module {
		node := byID[id]
		seen[id] = true

		childIDs := children[id]
		byName(childIDs)

		for _, childID := range childIDs {
			if seen[childID] {
				continue
			}
			node.Children = append(node.Children, build(childID))
		}
		return node
	}

	byName(rootIDs)

	roots := make([]Module, 0, len(rootIDs))
	for _, id := range rootIDs {
		if seen[id] {
			continue
		}
		roots = append(roots, build(id))
	}
	return roots
}
