package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildTree(t *testing.T) {
	modules := []Module{
		{ID: "1", Name: "Reports"},
		{ID: "2", Name: "Sales", ParentID: strPtr("1")},
		{ID: "3", Name: "Finance", ParentID: strPtr("1")},
		{ID: "4", Name: "Admin"},
		{ID: "5", Name: "Audit", ParentID: strPtr("3")},
	}

	tree := BuildTree(modules)
	require.Len(t, tree, 2)

	// Raízes ordenadas por nome
	assert.Equal(t, "Admin", tree[0].Name)
	assert.Equal(t, "Reports", tree[1].Name)

	reports := tree[1]
	require.Len(t, reports.Children, 2)
	assert.Equal(t, "Finance", reports.Children[0].Name)
	assert.Equal(t, "Sales", reports.Children[1].Name)

	finance := reports.Children[0]
	require.Len(t, finance.Children, 1)
	assert.Equal(t, "Audit", finance.Children[0].Name)
}

func TestBuildTreeDanglingParentBecomesRoot(t *testing.T) {
	modules := []Module{
		{ID: "1", Name: "Orphan", ParentID: strPtr("missing")},
		{ID: "2", Name: "Child", ParentID: strPtr("1")},
	}

	tree := BuildTree(modules)
	require.Len(t, tree, 1)
	assert.Equal(t, "Orphan", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Child", tree[0].Children[0].Name)
}

func TestBuildTreeSelfParentBecomesRoot(t *testing.T) {
	modules := []Module{
		{ID: "1", Name: "Loop", ParentID: strPtr("1")},
	}

	tree := BuildTree(modules)
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Children)
}

func TestBuildTreeCycleDoesNotHang(t *testing.T) {
	modules := []Module{
		{ID: "a", Name: "A", ParentID: strPtr("b")},
		{ID: "b", Name: "B", ParentID: strPtr("a")},
		{ID: "c", Name: "C"},
	}

	tree := BuildTree(modules)
	require.NotEmpty(t, tree)
	assert.Equal(t, "C", tree[0].Name)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
}
