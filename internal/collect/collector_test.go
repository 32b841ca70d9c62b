package collect

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/traduit/internal/hash"
	"github.com/quillworks/traduit/internal/index"
	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/internal/store"
	"github.com/quillworks/traduit/pkg/types"
)

// article is a field-value carrier with two translatable fields.
type article struct {
	Title string
	Body  string
}

func (a *article) BackingValue(field string) (string, bool) {
	switch field {
	case "Title":
		return a.Title, true
	case "Body":
		return a.Body, true
	default:
		return "", false
	}
}

// summary is a pointer-mode read model.
type summary struct {
	TitleHash string
	Title     string
}

func (s *summary) TranslationHashes() map[string]string {
	return map[string]string{"Title": s.TitleHash}
}

func (s *summary) InjectTranslation(field, text string) {
	if field == "Title" {
		s.Title = text
	}
}

// broken declares fields it cannot back.
type broken struct{}

func (broken) BackingValue(string) (string, bool) { return "", false }

func articleSpec() types.ClassSpec {
	return types.ClassSpec{
		Fields: []types.FieldSpec{
			{Name: "Title", Context: "article.title"},
			{Name: "Body"},
		},
	}
}

func setupCollector(t *testing.T) (*Collector, *index.Registry, *locale.Resolver) {
	t.Helper()

	registry := index.NewRegistry()
	require.NoError(t, registry.Register(&article{}, articleSpec()))
	require.NoError(t, registry.Register(&summary{}, types.ClassSpec{
		Fields: []types.FieldSpec{{Name: "Title"}},
	}))
	require.NoError(t, registry.Register(broken{}, types.ClassSpec{
		Fields: []types.FieldSpec{{Name: "Ghost"}},
	}))

	resolver := locale.NewResolver(types.LocaleConfig{Default: "en", Enabled: []string{"en", "fr", "de"}})
	return NewCollector(registry, resolver), registry, resolver
}

func setupCommitStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(types.DatabaseConfig{
		Driver: types.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "collect_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestTrack_StateMachine(t *testing.T) {
	c, _, _ := setupCollector(t)
	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	assert.Equal(t, StateCollecting, c.State())

	c.Abort()
	assert.Equal(t, StateIdle, c.State())
}

func TestTrack_UnregisteredClass(t *testing.T) {
	c, _, _ := setupCollector(t)

	err := c.Track(struct{ X string }{X: "hi"})
	assert.ErrorIs(t, err, types.ErrClassNotRegistered)
	assert.Equal(t, StateIdle, c.State())
}

func TestTrack_PointerModeStagesNothing(t *testing.T) {
	c, _, _ := setupCollector(t)

	require.NoError(t, c.Track(&summary{TitleHash: "abc"}))
	assert.Equal(t, StateIdle, c.State())
}

func TestTrack_MissingBackingValue(t *testing.T) {
	c, _, _ := setupCollector(t)

	err := c.Track(broken{})
	assert.ErrorIs(t, err, types.ErrNoBackingValue)
}

func TestFlush_StubCompleteness(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)
	ctx := context.Background()

	require.NoError(t, c.Track(&article{Title: "Hello", Body: "A long story"}))
	require.NoError(t, NewCommitter(st, discardLogger(), false).Flush(ctx, c))
	assert.Equal(t, StateIdle, c.State())

	titleKey := hash.Key("Hello", "en", "article.title")
	bodyKey := hash.Key("A long story", "en", "")

	for _, key := range []string{titleKey, bodyKey} {
		src, err := st.GetSource(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "en", src.SourceLocale)

		// Every target got a stub; none resolves as text yet.
		for _, target := range []string{"fr", "de"} {
			found := false
			err := st.IterateMissing(ctx, target, "", 0, func(s types.SourceString) error {
				if s.Hash == key {
					found = true
				}
				return nil
			})
			require.NoError(t, err)
			assert.True(t, found, "%s should be missing for %s", key, target)
		}
	}

	cov, err := st.Coverage(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, 2, cov.Total)
	assert.Equal(t, 0, cov.Translated)
}

func TestFlush_DeduplicatesAcrossRecords(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)
	ctx := context.Background()

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	require.NoError(t, c.Track(&article{Title: "Hello"}))
	require.NoError(t, NewCommitter(st, discardLogger(), false).Flush(ctx, c))

	cov, err := st.Coverage(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, 1, cov.Total)
}

func TestTrack_SkipsEmptyValues(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)
	ctx := context.Background()

	require.NoError(t, c.Track(&article{Title: "Hello", Body: ""}))
	require.NoError(t, NewCommitter(st, discardLogger(), false).Flush(ctx, c))

	cov, err := st.Coverage(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, 1, cov.Total, "empty body must not be staged")
}

func TestFlush_EmptyIsNoop(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)

	require.NoError(t, NewCommitter(st, discardLogger(), false).Flush(context.Background(), c))
	assert.Equal(t, StateIdle, c.State())
}

func TestFlush_ExplicitTexts(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)
	ctx := context.Background()

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	key := hash.Key("Hello", "en", "article.title")
	require.NoError(t, c.StageTranslation(types.TranslationKey{Hash: key, TargetLocale: "FR"}, "Bonjour", nil))

	require.NoError(t, NewCommitter(st, discardLogger(), false).Flush(ctx, c))

	text, ok, err := st.Lookup(ctx, key, "fr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bonjour", text)
}

func TestFlush_FailureDiscardsStagedState(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)
	ctx := context.Background()

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	require.NoError(t, st.Close())

	committer := NewCommitter(st, discardLogger(), false)
	err := committer.Flush(ctx, c)
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State())

	// The staged state was detached; a retry has nothing to commit and
	// succeeds even against the closed store.
	require.NoError(t, committer.Flush(ctx, c))
}

func TestFlush_TolerantSwallowsFailure(t *testing.T) {
	c, _, _ := setupCollector(t)
	st := setupCommitStore(t)

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	require.NoError(t, st.Close())

	assert.NoError(t, NewCommitter(st, discardLogger(), true).Flush(context.Background(), c))
	assert.Equal(t, StateIdle, c.State())
}

// reentrantStore re-fires the write signal from inside every commit, the
// way a host change tracker can see the commit's own rows as new scheduled
// work. Without the depth bound this would recurse forever.
type reentrantStore struct {
	types.Store
	committer *Committer
	collector *Collector
	commits   int
}

func (r *reentrantStore) WithinTx(ctx context.Context, fn func(types.StoreOps) error) error {
	r.commits++
	// The host settles its change tracker, stages more work and fires the
	// write signal again before the outer commit returns.
	_ = r.committer.Flush(ctx, r.collector)
	_ = r.collector.StageTranslation(types.TranslationKey{
		Hash:         "ffffffffffffffff",
		TargetLocale: "fr",
	}, "x", nil)
	_ = r.committer.Flush(ctx, r.collector)
	return nil
}

func TestFlush_ReentrancyBounded(t *testing.T) {
	c, _, _ := setupCollector(t)

	var buf bytes.Buffer
	rs := &reentrantStore{collector: c}
	committer := NewCommitter(rs, log.New(&buf, "", 0), false)
	rs.committer = committer

	require.NoError(t, c.Track(&article{Title: "Hello"}))
	require.NoError(t, committer.Flush(context.Background(), c))

	// One regular cycle plus one settle cycle; deeper recursion suppressed
	// and logged.
	assert.LessOrEqual(t, rs.commits, 2)
	assert.Contains(t, buf.String(), "flush recursion suppressed")
	assert.Equal(t, StateIdle, c.State())
}

func TestStageTranslation_Validates(t *testing.T) {
	c, _, _ := setupCollector(t)

	err := c.StageTranslation(types.TranslationKey{TargetLocale: "fr"}, "x", nil)
	assert.ErrorIs(t, err, types.ErrEmptyHash)

	err = c.StageTranslation(types.TranslationKey{Hash: "abc"}, "x", nil)
	assert.ErrorIs(t, err, types.ErrEmptyLocale)
}
