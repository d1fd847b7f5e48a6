// Package cache provides content-addressable, best-effort persistence for
// page text and embedding vectors. Keys are derived from the source
// identity (the URL), so the same identity always maps to the same entry
// across runs. The cache is an accelerator, never a source of truth:
// absence is a valid state and every payload can be recomputed.
package cache

import (
	"crypto/sha256"
	"fmt"
)

// Kind scopes entries into separate namespaces.
type Kind string

const (
	KindPage      Kind = "pages"
	KindEmbedding Kind = "embeddings"
)

// State describes the outcome of a load. Corrupt and Failed are treated as
// misses by callers; they exist so tests and logs can tell the kinds of
// absence apart.
type State int

const (
	Hit State = iota
	Miss
	Corrupt
	Failed
)

func (s State) String() string {
	switch s {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Corrupt:
		return "corrupt"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Store is the cache contract. Save overwrites any prior entry for the
// same identity; it has no error return because a cache-write failure must
// never abort the caller (implementations log and swallow). Load returns
// the payload and a State; anything other than Hit means the payload is
// nil and the caller should recompute.
type Store interface {
	Save(kind Kind, identity string, payload []byte)
	Load(kind Kind, identity string) ([]byte, State)
}

// Key derives the stable cache key for an identity: a SHA-256 hex digest,
// identical across platforms and process runs.
func Key(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return fmt.Sprintf("%x", sum)
}
