// Package fetchguard discards stale responses from superseded fetches.
// A caller takes a token before starting a request and checks it before
// applying the result; only the latest request for a given context wins.
package fetchguard

import "sync/atomic"

// Guard issues monotonically increasing generation tokens. The zero value
// is ready to use and safe for concurrent callers.
type Guard struct {
	gen atomic.Uint64
}

// Token identifies one in-flight request generation.
type Token uint64

// Next invalidates all outstanding tokens and returns a fresh one.
func (g *Guard) Next() Token {
	return Token(g.gen.Add(1))
}

// Latest reports whether tok is still the current generation. A stale
// response holds an old token and must be dropped by the caller.
func (g *Guard) Latest(tok Token) bool {
	return uint64(tok) == g.gen.Load()
}
