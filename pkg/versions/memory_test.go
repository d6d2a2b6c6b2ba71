package versions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, Variant{Name: "one", Content: content.Overrides{Slogan: content.String("s")}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	v, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "one", v.Name)
	assert.Equal(t, "s", *v.Content.Slogan)

	require.NoError(t, s.Update(ctx, id, Patch{Name: content.String("uno"), IsDefault: Bool(true)}))
	v, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "uno", v.Name)
	assert.True(t, v.IsDefault)
	assert.Equal(t, "s", *v.Content.Slogan, "unpatched fields survive")

	require.NoError(t, s.Delete(ctx, id))
	v, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.True(t, IsNotFound(s.Update(ctx, "nope", Patch{})))
	assert.True(t, IsNotFound(s.Delete(ctx, "nope")))
}

func TestMemoryStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Create(ctx, Variant{Name: "before"})
	require.NoError(t, err)

	var got [][]Variant
	unsubscribe := s.Subscribe(func(variants []Variant) {
		got = append(got, variants)
	})

	require.Len(t, got, 1, "current state is delivered on subscribe")
	assert.Len(t, got[0], 1)

	_, err = s.Create(ctx, Variant{Name: "after"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "before", got[1][0].Name)
	assert.Equal(t, "after", got[1][1].Name)

	unsubscribe()
	_, err = s.Create(ctx, Variant{Name: "ignored"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryStoreSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, err := s.Create(ctx, Variant{Name: "one"})
	require.NoError(t, err)

	var snapshot []Variant
	s.Subscribe(func(variants []Variant) { snapshot = variants })
	snapshot[0].Name = "tampered"

	v, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "one", v.Name)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Create(ctx, Variant{Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatchApply(t *testing.T) {
	base := Variant{
		ID:         "id",
		Name:       "n",
		Content:    content.Overrides{Tagline: content.String("t")},
		JobContext: &JobContext{Company: "Acme"},
	}

	tests := []struct {
		name  string
		patch Patch
		check func(t *testing.T, v Variant)
	}{
		{
			name:  "empty patch",
			patch: Patch{},
			check: func(t *testing.T, v Variant) {
				assert.Equal(t, base, v)
			},
		},
		{
			name:  "content replaced whole",
			patch: Patch{Content: &content.Overrides{Profile: content.String("p")}},
			check: func(t *testing.T, v Variant) {
				assert.Nil(t, v.Content.Tagline)
				assert.Equal(t, "p", *v.Content.Profile)
			},
		},
		{
			name:  "job context replaced",
			patch: Patch{JobContext: &JobContext{Company: "Globex"}},
			check: func(t *testing.T, v Variant) {
				assert.Equal(t, "Globex", v.JobContext.Company)
			},
		},
		{
			name:  "default flag",
			patch: Patch{IsDefault: Bool(true)},
			check: func(t *testing.T, v Variant) {
				assert.True(t, v.IsDefault)
				assert.Equal(t, "n", v.Name)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, tc.patch.apply(base))
		})
	}
}
