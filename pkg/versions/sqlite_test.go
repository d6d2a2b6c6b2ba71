package versions

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

func openTestStore(t *testing.T, path string) (s *SQLiteStore) {
	t.Helper()
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	return s
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "variants.db"))
	defer s.Close()

	v := Variant{
		Name: "Acme",
		Content: content.Overrides{
			Tagline:         content.String("Platform engineer"),
			KeyAchievements: []string{},
			WorkExperience:  []content.ExperienceEntry{{Company: "Acme", Role: "SRE", Skills: []string{}}},
		},
		JobContext: &JobContext{Company: "Acme", Role: "SRE"},
	}

	id, err := s.Create(ctx, v)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "Platform engineer", *got.Content.Tagline)
	assert.NotNil(t, got.Content.KeyAchievements, "cleared list survives storage")
	assert.Empty(t, got.Content.KeyAchievements)
	assert.Nil(t, got.Content.Profile, "absent field survives storage")
	require.Len(t, got.Content.WorkExperience, 1)
	assert.NotNil(t, got.Content.WorkExperience[0].Skills, "empty skills survive storage")
	assert.Equal(t, "SRE", got.JobContext.Role)

	require.NoError(t, s.Update(ctx, id, Patch{IsDefault: Bool(true)}))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.Equal(t, "Platform engineer", *got.Content.Tagline)

	require.NoError(t, s.Delete(ctx, id))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.True(t, IsNotFound(s.Delete(ctx, id)))
	assert.True(t, IsNotFound(s.Update(ctx, id, Patch{})))
}

func TestSQLiteStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "variants.db"))
	defer s.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, Variant{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	variants, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "a", variants[0].Name)
	assert.Equal(t, "c", variants[2].Name)
	assert.True(t, variants[0].CreatedAt.Equal(base))
}

func TestSQLiteStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "variants.db"))
	defer s.Close()

	var mu sync.Mutex
	var got [][]Variant
	unsubscribe := s.Subscribe(func(variants []Variant) {
		mu.Lock()
		got = append(got, variants)
		mu.Unlock()
	})
	defer unsubscribe()

	_, err := s.Create(ctx, Variant{Name: "one"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Empty(t, got[0])
	require.Len(t, got[1], 1)
	assert.Equal(t, "one", got[1][0].Name)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "variants.db")

	s := openTestStore(t, path)
	id, err := s.Create(ctx, Variant{Name: "persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestStore(t, path)
	defer s.Close()
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "persisted", got.Name)
}

func TestSQLiteStoreWatchSeesOtherWriters(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "variants.db")

	watching := openTestStore(t, path)
	defer watching.Close()
	require.NoError(t, watching.Watch())
	require.NoError(t, watching.Watch(), "second call is a no-op")

	var mu sync.Mutex
	var latest []Variant
	watching.Subscribe(func(variants []Variant) {
		mu.Lock()
		latest = variants
		mu.Unlock()
	})

	writer := openTestStore(t, path)
	defer writer.Close()
	_, err := writer.Create(ctx, Variant{Name: "from elsewhere"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 1 && latest[0].Name == "from elsewhere"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSQLiteStoreWithDirectory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "variants.db"))
	defer s.Close()

	_, err := s.Create(ctx, Variant{Name: "default", IsDefault: true})
	require.NoError(t, err)

	d := NewDirectory(s)
	defer d.Close()

	require.NotNil(t, d.Active())
	assert.Equal(t, "default", d.Active().Name)

	id, err := d.Create(ctx, "second", content.Overrides{}, nil)
	require.NoError(t, err)
	require.NoError(t, d.SetDefault(ctx, id))
	assert.Equal(t, 1, countDefaults(d.Variants()))
	assert.Equal(t, id, d.Default().ID)
}
