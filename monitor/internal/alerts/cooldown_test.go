package alerts

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_SuppressesInsideWindow(t *testing.T) {
	c := NewCooldown(time.Hour, 24*time.Hour)
	t0 := time.Now()

	assert.True(t, c.Allow("0xabc", 10, t0))
	assert.False(t, c.Allow("0xabc", 10, t0.Add(time.Second)))
	assert.False(t, c.Allow("0xabc", 10, t0.Add(59*time.Minute)))
	assert.True(t, c.Allow("0xabc", 10, t0.Add(time.Hour).Add(time.Second)))
}

func TestAllow_KeyIsAddressAndScore(t *testing.T) {
	c := NewCooldown(time.Hour, 24*time.Hour)
	t0 := time.Now()

	assert.True(t, c.Allow("0xabc", 10, t0))
	// A changed score is a different alert, not a repeat.
	assert.True(t, c.Allow("0xabc", 11, t0))
	assert.True(t, c.Allow("0xdef", 10, t0))
	assert.False(t, c.Allow("0xabc", 10, t0.Add(time.Minute)))
}

func TestAllow_ConcurrentCallersAdmitExactlyOne(t *testing.T) {
	c := NewCooldown(time.Hour, 24*time.Hour)
	t0 := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Allow("0xabc", 10, t0) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed)
}

func TestSweep_DropsIdleEntries(t *testing.T) {
	c := NewCooldown(time.Hour, 2*time.Hour)
	t0 := time.Now()

	c.Allow("0xold", 10, t0)
	c.Allow("0xfresh", 10, t0.Add(90*time.Minute))
	assert.Equal(t, 2, c.Len())

	removed := c.Sweep(t0.Add(3 * time.Hour))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
	// The swept entry is eligible again.
	assert.True(t, c.Allow("0xold", 10, t0.Add(3*time.Hour)))
}

func TestNewCooldown_RetentionNeverBelowWindow(t *testing.T) {
	c := NewCooldown(time.Hour, time.Minute)
	t0 := time.Now()

	c.Allow("0xabc", 10, t0)
	// 30 minutes in, still inside the window, so the entry must survive a sweep.
	assert.Equal(t, 0, c.Sweep(t0.Add(30*time.Minute)))
	assert.False(t, c.Allow("0xabc", 10, t0.Add(30*time.Minute)))
}
