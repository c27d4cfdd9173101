package utilities

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_Unique(t *testing.T) {
	g := NewIDGenerator(1)

	const n = 500
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NewID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestIDGenerator_FallsBackToKSUID(t *testing.T) {
	// snowflake nodes are limited to 10 bits
	g := NewIDGenerator(5000)
	id := g.NewID()
	require.NotEmpty(t, id)
	assert.Len(t, id, 27)
}

func TestIDGenerator_NilReceiver(t *testing.T) {
	var g *IDGenerator
	assert.Len(t, g.NewID(), 27)
}
