package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, utils.NewDevelopmentLogger()), server
}

type cachedQuiz struct {
	QuizID string `json:"quizId"`
	Title  string `json:"title"`
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stored := cachedQuiz{QuizID: "quiz-1", Title: "Quiz A"}
	require.NoError(t, c.Set(ctx, "quiz:quiz-1", stored, time.Minute))

	var loaded cachedQuiz
	require.NoError(t, c.Get(ctx, "quiz:quiz-1", &loaded))
	assert.Equal(t, stored, loaded)
}

func TestRedisCache_MissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	var loaded cachedQuiz
	err := c.Get(context.Background(), "quiz:absent", &loaded)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:quiz-1", cachedQuiz{QuizID: "quiz-1"}, time.Second))
	server.FastForward(2 * time.Second)

	var loaded cachedQuiz
	err := c.Get(ctx, "quiz:quiz-1", &loaded)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntryBehavesLikeMiss(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, server.Set("quiz:quiz-1", "{not json"))

	var loaded cachedQuiz
	err := c.Get(ctx, "quiz:quiz-1", &loaded)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// The corrupt entry is dropped.
	assert.False(t, server.Exists("quiz:quiz-1"))
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:quiz-1", cachedQuiz{QuizID: "quiz-1"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "quiz:quiz-1"))

	var loaded cachedQuiz
	err := c.Get(ctx, "quiz:quiz-1", &loaded)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
