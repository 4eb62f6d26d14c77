package keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(context.Context, *parser.Step, *vars.Scope) (any, error) {
	return true, nil
}

func TestRegistry_Register(t *testing.T) {
	t.Run("duplicate without override fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("foo", noopHandler, Metadata{}, false))

		err := r.Register("foo", noopHandler, Metadata{}, false)
		var dup *DuplicateKeywordError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "foo", dup.Name)
	})

	t.Run("override replaces", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("foo", noopHandler, Metadata{}, false))

		replaced := func(context.Context, *parser.Step, *vars.Scope) (any, error) {
			return "replacement", nil
		}
		require.NoError(t, r.Register("foo", replaced, Metadata{}, true))

		h, ok := r.Get("foo")
		require.True(t, ok)
		result, err := h(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "replacement", result)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register("", noopHandler, Metadata{}, false))
	})
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("zebra", noopHandler, Metadata{}, false))
	require.NoError(t, r.Register("apple", noopHandler, Metadata{Description: "fruit"}, false))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "apple", list[0].Name)
	assert.Equal(t, "fruit", list[0].Meta.Description)
	assert.Equal(t, "zebra", list[1].Name)
}

func TestApplyResult(t *testing.T) {
	t.Run("map merges non-reserved keys", func(t *testing.T) {
		scope := vars.NewScope(nil)
		ok := ApplyResult(map[string]any{
			"success": true,
			"message": "done",
			"orderId": "A-1",
			"count":   3,
		}, scope)

		assert.True(t, ok)
		v, found := scope.Get("orderId")
		require.True(t, found)
		assert.Equal(t, "A-1", v)
		v, found = scope.Get("count")
		require.True(t, found)
		assert.Equal(t, "3", v)

		_, found = scope.Get("success")
		assert.False(t, found)
		_, found = scope.Get("message")
		assert.False(t, found)
	})

	t.Run("map success false", func(t *testing.T) {
		scope := vars.NewScope(nil)
		ok := ApplyResult(map[string]any{"success": false, "detail": "x"}, scope)
		assert.False(t, ok)
		_, found := scope.Get("detail")
		assert.True(t, found, "keys merge even when success is false")
	})

	t.Run("map without success defaults true", func(t *testing.T) {
		assert.True(t, ApplyResult(map[string]any{"k": "v"}, vars.NewScope(nil)))
	})

	t.Run("scalar truthiness", func(t *testing.T) {
		scope := vars.NewScope(nil)
		assert.True(t, ApplyResult(true, scope))
		assert.False(t, ApplyResult(false, scope))
		assert.True(t, ApplyResult("text", scope))
		assert.False(t, ApplyResult("", scope))
		assert.True(t, ApplyResult(nil, scope))
	})
}

func TestInvoke(t *testing.T) {
	t.Run("handler error is failure", func(t *testing.T) {
		h := func(context.Context, *parser.Step, *vars.Scope) (any, error) {
			return nil, errors.New("boom")
		}
		ok, _, err := Invoke(context.Background(), h, &parser.Step{}, vars.NewScope(nil))
		assert.False(t, ok)
		assert.Error(t, err)
	})

	t.Run("map result lands in scope", func(t *testing.T) {
		h := func(context.Context, *parser.Step, *vars.Scope) (any, error) {
			return map[string]any{"token": "abc"}, nil
		}
		scope := vars.NewScope(nil)
		ok, _, err := Invoke(context.Background(), h, &parser.Step{}, scope)
		require.NoError(t, err)
		assert.True(t, ok)
		v, found := scope.Get("token")
		require.True(t, found)
		assert.Equal(t, "abc", v)
	})
}
