package report

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// SequentialIDGenerator generates 1, 2, 3, ... It is safe for concurrent use
// and deterministic for a single goroutine.
type SequentialIDGenerator struct {
	nextID uint64
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

// XIDGenerator generates globally unique IDs. The IDs are not deterministic.
type XIDGenerator struct{}

// Generate returns a new xid.
func (XIDGenerator) Generate() string {
	return xid.New().String()
}
