package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

func TestTagCatalog_SeededOnce(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	require.NoError(t, env.admin.SeedTags(ctx))

	all, err := env.tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 42)

	emotions, err := env.tags.GetByCategory(ctx, domain.TagEmotion)
	require.NoError(t, err)
	assert.Len(t, emotions, 30)

	activities, err := env.tags.GetByCategory(ctx, domain.TagActivity)
	require.NoError(t, err)
	assert.Len(t, activities, 12)

	// Re-seeding an already populated catalog is a no-op.
	require.NoError(t, env.admin.SeedTags(ctx))
	all, err = env.tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 42)
}

func TestTagCreateCustom_UniqueCaseInsensitive(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	require.NoError(t, env.admin.SeedTags(ctx))

	tag, err := env.tags.CreateCustom(ctx, "stargazing", domain.TagActivity, "#123456")
	require.NoError(t, err)
	assert.True(t, tag.IsCustom)

	_, err = env.tags.CreateCustom(ctx, "StarGazing", domain.TagActivity, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))

	// Clashes with a seeded built-in too.
	_, err = env.tags.CreateCustom(ctx, "Joyful", domain.TagEmotion, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))

	custom, err := env.tags.GetCustom(ctx)
	require.NoError(t, err)
	assert.Len(t, custom, 1)
}

func TestTagDelete_BuiltInsProtected(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	require.NoError(t, env.admin.SeedTags(ctx))

	err := env.tags.Delete(ctx, "emotion-joyful")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	custom, err := env.tags.CreateCustom(ctx, "stargazing", domain.TagActivity, "")
	require.NoError(t, err)
	require.NoError(t, env.tags.Delete(ctx, custom.ID))

	remaining, err := env.tags.GetCustom(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTagSearch(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	require.NoError(t, env.admin.SeedTags(ctx))

	found, err := env.tags.Search(ctx, "JOY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "joyful", found[0].Name)
}
