package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSuccessRate(t *testing.T) {
	c := NewCollector()

	c.RecordAPICall("/api/queue", "GET", true, 10*time.Millisecond)
	c.RecordAPICall("/api/queue", "GET", true, 10*time.Millisecond)
	c.RecordAPICall("/api/queue", "GET", false, 10*time.Millisecond)
	c.RecordAPICall("/api/captions", "GET", true, 10*time.Millisecond)

	assert.InDelta(t, 75.0, c.SuccessRate(), 0.01)
}

func TestCollectorPostStats(t *testing.T) {
	c := NewCollector()

	c.RecordPost("completed")
	c.RecordPost("completed")
	c.RecordPost("failed")
	c.RecordPost("scheduled")

	dashboard := c.Dashboard()
	posts, ok := dashboard["posts"].(PostStats)
	require.True(t, ok)
	assert.Equal(t, 4, posts.Total)
	assert.Equal(t, 2, posts.Completed)
	assert.Equal(t, 1, posts.Failed)
	assert.Equal(t, 1, posts.Scheduled)
	assert.InDelta(t, 50.0, posts.SuccessRate, 0.01)
}

func TestCollectorBoundedBuffers(t *testing.T) {
	c := NewCollector()

	for i := 0; i < recentCallLimit+20; i++ {
		c.RecordAPICall("/api/x", "GET", true, time.Millisecond)
	}
	for i := 0; i < recentErrorLimit+10; i++ {
		c.RecordError("server_error", fmt.Sprintf("boom %d", i))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.recentCalls, recentCallLimit)
	assert.Len(t, c.responseTimes, recentCallLimit)
	assert.Len(t, c.recentErrors, recentErrorLimit)
	assert.Equal(t, "boom 59", c.recentErrors[len(c.recentErrors)-1].Message)
}
