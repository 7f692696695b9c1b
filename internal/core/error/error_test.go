package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	notFound := WrapRedis(fmt.Errorf("get: %w", redis.Nil))
	assert.True(t, IsNotFound(notFound))
	assert.ErrorIs(t, notFound, redis.Nil)

	down := WrapRedis(errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(down))
	assert.False(t, IsNotFound(down))
	assert.Contains(t, down.Error(), RedisErrorMessage)
}

func TestWrapUpstream(t *testing.T) {
	assert.NoError(t, WrapUpstream("pinata", nil))

	timeout := WrapUpstream("starknet", fmt.Errorf("wait: %w", context.DeadlineExceeded))
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(timeout))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
	assert.Contains(t, timeout.Error(), "starknet")

	failed := WrapUpstream("pinata", errors.New("status 401"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(failed))

	var appErr *AppError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", failed), &appErr)
	assert.Equal(t, UpstreamErrorMessage, appErr.Message)
}

func TestStatusOf_Plain(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, "internal server error", New(nil, 500, SystemErrorMessage).Error())
}
