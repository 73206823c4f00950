package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const oneRule = `
rules:
  - id: only
    priority: 1
    insight: one
    when: {max: {dim: A}}
`

const twoRules = `
rules:
  - id: first
    priority: 2
    insight: one
    when: {max: {dim: A}}
  - id: second
    priority: 1
    insight: two
    when: {max: {dim: B}}
`

func TestStoreMissingFileFallsBack(t *testing.T) {
	var results []bool
	store := NewStore(filepath.Join(t.TempDir(), "absent.yaml"), nil, WithReloadHook(func(ok bool) {
		results = append(results, ok)
	}))

	rs := store.Current()
	require.NotNil(t, rs)
	assert.Equal(t, SourceFallback, rs.Meta.Source)
	assert.Len(t, rs.Bands, 10)
	assert.NotEmpty(t, rs.Rules)
	assert.Equal(t, []bool{false}, results)

	// cached: no second load attempt
	assert.Same(t, rs, store.Current())
	assert.Len(t, results, 1)
}

func TestStoreEmptyPathServesDefaults(t *testing.T) {
	store := NewStore("", nil)
	assert.Equal(t, SourceFallback, store.Current().Meta.Source)
}

func TestStoreKeepsPreviousOnBrokenReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneRule), 0o600))

	store := NewStore(path, nil)
	require.Equal(t, []string{"only"}, store.Current().RuleIDs())

	require.NoError(t, os.WriteFile(path, []byte("rules: [oops"), 0o600))
	assert.Error(t, store.Reload())
	assert.Equal(t, []string{"only"}, store.Current().RuleIDs())

	require.NoError(t, os.WriteFile(path, []byte(twoRules), 0o600))
	require.NoError(t, store.Reload())
	assert.Equal(t, []string{"first", "second"}, store.Current().RuleIDs())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneRule), 0o600))

	store := NewStore(path, nil)
	require.Equal(t, []string{"only"}, store.Current().RuleIDs())

	w := NewWatcher(store, nil)
	w.debounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(twoRules), 0o600))

	require.Eventually(t, func() bool {
		return len(store.Current().RuleIDs()) == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneRule), 0o600))

	w := NewWatcher(NewStore(path, nil), nil)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
