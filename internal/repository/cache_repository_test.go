package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "courses")
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "all", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "all", []string{"a"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "all"))
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "courses:all", NewCacheRepository(nil, "courses").key("all"))
	assert.Equal(t, "all", NewCacheRepository(nil, "").key("all"))
}
