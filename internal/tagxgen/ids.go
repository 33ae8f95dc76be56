package tagxgen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDAllocator hands out the unique ids passed to extension invocations.
type IDAllocator interface {
	NextID() string
}

// passIDs numbers invocations within one pass, prefixed with a random pass
// salt so ids from different passes do not collide either.
type passIDs struct {
	salt string
	n    int
}

// NewPassIDs returns the production allocator. Every call to NextID on the
// returned allocator yields a different id.
func NewPassIDs() IDAllocator {
	salt := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &passIDs{salt: salt[:12]}
}

func (a *passIDs) NextID() string {
	a.n++
	return a.salt + strconv.Itoa(a.n)
}

// FixedID returns an allocator that always yields id. It is only usable for
// templates with at most one extension invocation; a second invocation makes
// rendering fail.
func FixedID(id string) IDAllocator {
	return fixedID(id)
}

type fixedID string

func (f fixedID) NextID() string {
	return string(f)
}
