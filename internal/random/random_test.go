package random

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLockedConcurrentUse(t *testing.T) {
	rng := NewLocked(1)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				n := rng.Intn(10)
				assert.GreaterOrEqual(t, n, 0)
				assert.Less(t, n, 10)
			}
		}()
	}
	wg.Wait()
}

func TestNewLockedIsDeterministicPerSeed(t *testing.T) {
	a := NewLocked(42)
	b := NewLocked(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}
