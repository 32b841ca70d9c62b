package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/traduit/internal/hash"
	"github.com/quillworks/traduit/pkg/types"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(types.DatabaseConfig{
		Driver: types.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// setupFallbackStore forces the insert-then-update path over SQLite.
func setupFallbackStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "fallback_test.db"))
	require.NoError(t, err)

	st, err := NewWithAdapter(db, FallbackAdapter{Base: SQLiteAdapter{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustUpsertSource(t *testing.T, st *Store, text, sourceLocale, fieldContext string) string {
	t.Helper()

	key := hash.Key(text, sourceLocale, fieldContext)
	err := st.WithinTx(context.Background(), func(ops types.StoreOps) error {
		return ops.UpsertSource(context.Background(), types.SourceString{
			Hash:         key,
			Original:     text,
			SourceLocale: sourceLocale,
			Context:      fieldContext,
		})
	})
	require.NoError(t, err)
	return key
}

func mustUpsertText(t *testing.T, st *Store, key types.TranslationKey, text string) {
	t.Helper()

	err := st.WithinTx(context.Background(), func(ops types.StoreOps) error {
		return ops.UpsertText(context.Background(), key, text, types.StatusTranslated, nil)
	})
	require.NoError(t, err)
}

func TestUpsertSource_Dedup(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := mustUpsertSource(t, st, "Hello", "en", "")
	again := mustUpsertSource(t, st, "Hello", "en", "")
	assert.Equal(t, key, again)

	var count int
	require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM source_strings`).Scan(&count))
	assert.Equal(t, 1, count)

	src, err := st.GetSource(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Hello", src.Original)
	assert.Equal(t, "en", src.SourceLocale)
	assert.False(t, src.CreatedAt.IsZero())
}

func TestUpsertSource_MetaRoundTrip(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := hash.Key("Hello", "en", "greeting")
	err := st.WithinTx(ctx, func(ops types.StoreOps) error {
		return ops.UpsertSource(ctx, types.SourceString{
			Hash:         key,
			Original:     "Hello",
			SourceLocale: "en",
			Context:      "greeting",
			Meta:         types.Meta{"origin": "import"},
		})
	})
	require.NoError(t, err)

	src, err := st.GetSource(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "greeting", src.Context)
	assert.Equal(t, types.Meta{"origin": "import"}, src.Meta)
}

func TestUpsertSource_Invalid(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	err := st.WithinTx(ctx, func(ops types.StoreOps) error {
		return ops.UpsertSource(ctx, types.SourceString{Original: "no hash"})
	})
	assert.ErrorIs(t, err, types.ErrEmptyHash)
}

func TestEnsureStub_NeverOverwrites(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := mustUpsertSource(t, st, "Hello", "en", "")
	tkey := types.TranslationKey{Hash: key, TargetLocale: "fr", Engine: types.EngineNone}

	mustUpsertText(t, st, tkey, "Bonjour")
	require.NoError(t, st.WithinTx(ctx, func(ops types.StoreOps) error {
		return ops.EnsureStub(ctx, tkey)
	}))

	text, ok, err := st.Lookup(ctx, key, "fr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bonjour", text)
}

func TestEnsureStub_Idempotent(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := mustUpsertSource(t, st, "Hello", "en", "")
	tkey := types.TranslationKey{Hash: key, TargetLocale: "fr"}

	for i := 0; i < 3; i++ {
		require.NoError(t, st.WithinTx(ctx, func(ops types.StoreOps) error {
			return ops.EnsureStub(ctx, tkey)
		}))
	}

	var count int
	require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM translations`).Scan(&count))
	assert.Equal(t, 1, count)

	_, ok, err := st.Lookup(ctx, key, "fr")
	require.NoError(t, err)
	assert.False(t, ok, "stub must not resolve as text")
}

func TestUpsertText_Overwrites(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := mustUpsertSource(t, st, "Hello", "en", "")
	tkey := types.TranslationKey{Hash: key, TargetLocale: "fr", Engine: types.EngineNone}

	mustUpsertText(t, st, tkey, "Salut")
	mustUpsertText(t, st, tkey, "Bonjour")

	text, ok, err := st.Lookup(ctx, key, "fr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bonjour", text)

	var count int
	require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM translations`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLookup(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := mustUpsertSource(t, st, "Hello", "en", "")

	t.Run("absent row", func(t *testing.T) {
		_, ok, err := st.Lookup(ctx, key, "fr")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("any engine qualifies", func(t *testing.T) {
		mustUpsertText(t, st, types.TranslationKey{Hash: key, TargetLocale: "fr", Engine: "libretranslate"}, "Bonjour")

		text, ok, err := st.Lookup(ctx, key, "fr")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Bonjour", text)
	})

	t.Run("empty arguments", func(t *testing.T) {
		_, _, err := st.Lookup(ctx, "", "fr")
		assert.ErrorIs(t, err, types.ErrEmptyHash)
		_, _, err = st.Lookup(ctx, key, "")
		assert.ErrorIs(t, err, types.ErrEmptyLocale)
	})
}

func TestLookupAll(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	k1 := mustUpsertSource(t, st, "Hello", "en", "")
	k2 := mustUpsertSource(t, st, "Goodbye", "en", "")
	k3 := mustUpsertSource(t, st, "Welcome", "en", "")

	mustUpsertText(t, st, types.TranslationKey{Hash: k1, TargetLocale: "fr"}, "Bonjour")
	mustUpsertText(t, st, types.TranslationKey{Hash: k2, TargetLocale: "fr"}, "Au revoir")
	// k3 stays a stub.
	require.NoError(t, st.WithinTx(ctx, func(ops types.StoreOps) error {
		return ops.EnsureStub(ctx, types.TranslationKey{Hash: k3, TargetLocale: "fr"})
	}))

	got, err := st.LookupAll(ctx, []string{k1, k2, k3, "ffffffffffffffff"}, "fr")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{k1: "Bonjour", k2: "Au revoir"}, got)

	t.Run("empty hash list", func(t *testing.T) {
		got, err := st.LookupAll(ctx, nil, "fr")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGetSource_NotFound(t *testing.T) {
	st := setupStore(t)

	_, err := st.GetSource(context.Background(), "ffffffffffffffff")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestIterateMissing(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	kEN := mustUpsertSource(t, st, "Hello", "en", "")
	kDE := mustUpsertSource(t, st, "Hallo", "de", "")
	kFR := mustUpsertSource(t, st, "Bonjour", "fr", "")

	collect := func(locale, filter string, limit int) []string {
		var hashes []string
		err := st.IterateMissing(ctx, locale, filter, limit, func(src types.SourceString) error {
			hashes = append(hashes, src.Hash)
			return nil
		})
		require.NoError(t, err)
		return hashes
	}

	t.Run("own-locale sources excluded", func(t *testing.T) {
		got := collect("fr", "", 0)
		assert.ElementsMatch(t, []string{kEN, kDE}, got)
		assert.NotContains(t, got, kFR)
	})

	t.Run("stub still counts as missing", func(t *testing.T) {
		require.NoError(t, st.WithinTx(ctx, func(ops types.StoreOps) error {
			return ops.EnsureStub(ctx, types.TranslationKey{Hash: kEN, TargetLocale: "fr"})
		}))
		assert.Contains(t, collect("fr", "", 0), kEN)
	})

	t.Run("usable text drops the row", func(t *testing.T) {
		mustUpsertText(t, st, types.TranslationKey{Hash: kEN, TargetLocale: "fr"}, "Salut")
		got := collect("fr", "", 0)
		assert.NotContains(t, got, kEN)
		assert.Contains(t, got, kDE)
	})

	t.Run("source filter", func(t *testing.T) {
		assert.Equal(t, []string{kDE}, collect("fr", "de", 0))
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, collect("es", "", 2), 2)
	})

	t.Run("callback error aborts", func(t *testing.T) {
		wantErr := fmt.Errorf("stop")
		err := st.IterateMissing(ctx, "es", "", 0, func(types.SourceString) error {
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestCoverage(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	k1 := mustUpsertSource(t, st, "Hello", "en", "")
	mustUpsertSource(t, st, "Goodbye", "en", "")
	mustUpsertSource(t, st, "Bonjour", "fr", "")

	mustUpsertText(t, st, types.TranslationKey{Hash: k1, TargetLocale: "fr"}, "Salut")

	cov, err := st.Coverage(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, 2, cov.Total, "fr sources are not fr targets")
	assert.Equal(t, 1, cov.Translated)
	assert.InDelta(t, 50.0, cov.Percent(), 0.01)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := hash.Key("Hello", "en", "")
	wantErr := fmt.Errorf("abort")
	err := st.WithinTx(ctx, func(ops types.StoreOps) error {
		if err := ops.UpsertSource(ctx, types.SourceString{Hash: key, Original: "Hello", SourceLocale: "en"}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = st.GetSource(ctx, key)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFallbackPath(t *testing.T) {
	st := setupFallbackStore(t)
	ctx := context.Background()

	t.Run("source insert then update", func(t *testing.T) {
		key := hash.Key("Hello", "en", "")
		for _, original := range []string{"Hello", "Hello"} {
			err := st.WithinTx(ctx, func(ops types.StoreOps) error {
				return ops.UpsertSource(ctx, types.SourceString{Hash: key, Original: original, SourceLocale: "en"})
			})
			require.NoError(t, err)
		}

		var count int
		require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM source_strings`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("stub conflict swallowed", func(t *testing.T) {
		key := mustUpsertSource(t, st, "Goodbye", "en", "")
		tkey := types.TranslationKey{Hash: key, TargetLocale: "fr"}
		mustUpsertText(t, st, tkey, "Au revoir")

		require.NoError(t, st.WithinTx(ctx, func(ops types.StoreOps) error {
			return ops.EnsureStub(ctx, tkey)
		}))

		text, ok, err := st.Lookup(ctx, key, "fr")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Au revoir", text)
	})

	t.Run("text insert then update", func(t *testing.T) {
		key := mustUpsertSource(t, st, "Welcome", "en", "")
		tkey := types.TranslationKey{Hash: key, TargetLocale: "fr"}
		mustUpsertText(t, st, tkey, "Bienvenu")
		mustUpsertText(t, st, tkey, "Bienvenue")

		text, ok, err := st.Lookup(ctx, key, "fr")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Bienvenue", text)
	})
}

// Concurrent writers staging the same content must converge on one row.
func TestConcurrentSameHashWriters(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := hash.Key("Hello", "en", "")
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.WithinTx(ctx, func(ops types.StoreOps) error {
				if err := ops.UpsertSource(ctx, types.SourceString{Hash: key, Original: "Hello", SourceLocale: "en"}); err != nil {
					return err
				}
				return ops.EnsureStub(ctx, types.TranslationKey{Hash: key, TargetLocale: "fr"})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var sources, translations int
	require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM source_strings`).Scan(&sources))
	require.NoError(t, st.db.QueryRowx(`SELECT COUNT(*) FROM translations`).Scan(&translations))
	assert.Equal(t, 1, sources)
	assert.Equal(t, 1, translations)
}
