package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_SlidingWindow(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(2, time.Second)
	clock := time.Unix(1000, 0)
	rl.now = func() time.Time { return clock }

	req.True(rl.Allow("a"))
	req.True(rl.Allow("a"))
	req.False(rl.Allow("a"))
	req.True(rl.Allow("b"), "limits are per participant")

	// The window slides past the first attempts
	clock = clock.Add(1100 * time.Millisecond)
	req.True(rl.Allow("a"))
	req.True(rl.Allow("a"))
	req.False(rl.Allow("a"))

	// Forget clears the whole window
	rl.Forget("a")
	req.True(rl.Allow("a"))
	req.True(rl.Allow("a"))
	req.False(rl.Allow("a"))
}
