package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DoublesUpToCap(t *testing.T) {
	q := NewRedisQueue(nil, Options{BackoffBase: 30 * time.Second, BackoffCap: 5 * time.Minute})

	assert.Equal(t, 30*time.Second, q.Backoff(1))
	assert.Equal(t, time.Minute, q.Backoff(2))
	assert.Equal(t, 2*time.Minute, q.Backoff(3))
	assert.Equal(t, 4*time.Minute, q.Backoff(4))
	assert.Equal(t, 5*time.Minute, q.Backoff(5))
	assert.Equal(t, 5*time.Minute, q.Backoff(10))
}

func TestBackoff_Defaults(t *testing.T) {
	q := NewRedisQueue(nil, Options{})

	assert.Equal(t, 30*time.Second, q.Backoff(1))
	assert.Equal(t, time.Hour, q.Backoff(20))
}
