package fetchguard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextInvalidatesOlderTokens(t *testing.T) {
	var g Guard

	t1 := g.Next()
	assert.True(t, g.Latest(t1))

	t2 := g.Next()
	assert.False(t, g.Latest(t1), "superseded token must be stale")
	assert.True(t, g.Latest(t2))
}

func TestZeroTokenIsNeverLatest(t *testing.T) {
	var g Guard
	g.Next()
	assert.False(t, g.Latest(Token(0)))
}

func TestConcurrentNextYieldsOneWinner(t *testing.T) {
	var g Guard
	const n = 64

	tokens := make([]Token, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tokens[i] = g.Next()
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, tok := range tokens {
		if g.Latest(tok) {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}
