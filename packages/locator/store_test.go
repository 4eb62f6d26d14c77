package locator

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		winner   string
		want     []string
	}{
		{"winner already first", []string{"#a", "#b"}, "#a", []string{"#a", "#b"}},
		{"promote second", []string{"#a", "#b"}, "#b", []string{"#b", "#a"}},
		{"promote middle keeps relative order", []string{"#a", "#b", "#c", "#d"}, "#c", []string{"#c", "#a", "#b", "#d"}},
		{"unseen winner inserted at front", []string{"#a", "#b"}, "#new", []string{"#new", "#a", "#b"}},
		{"empty existing", nil, "#a", []string{"#a"}},
		{"cap at five", []string{"#a", "#b", "#c", "#d", "#e"}, "#new", []string{"#new", "#a", "#b", "#c", "#d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Promote(tt.existing, tt.winner))
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	err := store.ApplyHealing("login-page", "$username", "#user-v2",
		[]string{"#user", "#user-v2"}, "h1")
	require.NoError(t, err)

	groups, err := store.Load("login-page")
	require.NoError(t, err)
	require.Contains(t, groups, "$username")
	assert.Equal(t, []string{"#user-v2", "#user"}, groups["$username"].Selectors)
	assert.Equal(t, "h1", groups["$username"].Hash)
}

func TestStore_HealingPromotesExistingEntry(t *testing.T) {
	store := NewStore(t.TempDir())

	// seed the on-disk ordering
	require.NoError(t, store.ApplyHealing("page", "$btn", "#b",
		[]string{"#a", "#b", "#c"}, ""))
	groups, err := store.Load("page")
	require.NoError(t, err)
	require.Equal(t, []string{"#b", "#a", "#c"}, groups["$btn"].Selectors)

	// a later heal promotes against the stored ordering, not the runtime list
	require.NoError(t, store.ApplyHealing("page", "$btn", "#c",
		[]string{"#x", "#c"}, ""))
	groups, err = store.Load("page")
	require.NoError(t, err)
	assert.Equal(t, []string{"#c", "#b", "#a"}, groups["$btn"].Selectors)
}

func TestStore_SkipWhenOrderingUnchanged(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.ApplyHealing("page", "$btn", "#b", []string{"#a", "#b"}, ""))
	path := store.FilePath("page")
	before, err := readGroups(path)
	require.NoError(t, err)

	// healing to the already-primary candidate is a no-op
	require.NoError(t, store.ApplyHealing("page", "$btn", "#b", []string{"#b", "#a"}, ""))
	after, err := readGroups(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_SkipWhenHashMatches(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.ApplyHealing("page", "$btn", "#b", []string{"#a", "#b"}, "same-hash"))
	groups, err := store.Load("page")
	require.NoError(t, err)
	require.Equal(t, []string{"#b", "#a"}, groups["$btn"].Selectors)
}

func TestStore_MissingFileLoadsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())
	groups, err := store.Load("never-written")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStore_ConcurrentDistinctKeys(t *testing.T) {
	store := NewStore(t.TempDir())
	const keys = 8

	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := fmt.Sprintf("$ref-%d", i)
			winner := fmt.Sprintf("#winner-%d", i)
			fallback := fmt.Sprintf("#old-%d", i)
			err := store.ApplyHealing("shared", ref, winner, []string{fallback, winner}, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	groups, err := store.Load("shared")
	require.NoError(t, err)
	require.Len(t, groups, keys, "no concurrent update may be lost")
	for i := 0; i < keys; i++ {
		ref := fmt.Sprintf("$ref-%d", i)
		require.Contains(t, groups, ref)
		assert.Equal(t, fmt.Sprintf("#winner-%d", i), groups[ref].Selectors[0])
	}
}

func TestStore_ConcurrentSameKey(t *testing.T) {
	store := NewStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.ApplyHealing("page", "$btn", "#b", []string{"#a", "#b"}, "")
		}()
	}
	wg.Wait()

	groups, err := store.Load("page")
	require.NoError(t, err)
	assert.Equal(t, []string{"#b", "#a"}, groups["$btn"].Selectors)
}

func TestSanitizeRef(t *testing.T) {
	assert.Equal(t, "_username", sanitizeRef("$username"))
	assert.Equal(t, "a_b_c.d-e", sanitizeRef("a/b c.d-e"))
}
