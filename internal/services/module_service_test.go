package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreatesCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	d := uuid.New()

	// a <- b <- c (c's parent is b, b's parent is a)
	parents := map[uuid.UUID]*uuid.UUID{
		a: nil,
		b: &a,
		c: &b,
		d: nil,
	}

	t.Run("reparenting ancestor under descendant creates cycle", func(t *testing.T) {
		assert.True(t, CreatesCycle(parents, a, c))
		assert.True(t, CreatesCycle(parents, a, b))
		assert.True(t, CreatesCycle(parents, b, c))
	})

	t.Run("valid reparent is allowed", func(t *testing.T) {
		assert.False(t, CreatesCycle(parents, c, a))
		assert.False(t, CreatesCycle(parents, d, c))
		assert.False(t, CreatesCycle(parents, b, d))
	})

	t.Run("direct self edge", func(t *testing.T) {
		assert.True(t, CreatesCycle(parents, a, a))
	})

	t.Run("parent missing from map treated as root", func(t *testing.T) {
		assert.False(t, CreatesCycle(parents, d, uuid.New()))
	})

	t.Run("pre-existing cycle not involving the module terminates", func(t *testing.T) {
		x := uuid.New()
		y := uuid.New()
		bad := map[uuid.UUID]*uuid.UUID{
			x: &y,
			y: &x,
		}
		assert.False(t, CreatesCycle(bad, d, x))
	})
}
