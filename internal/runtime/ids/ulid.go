package ids

import (
	"crypto/rand"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// LineagePrefix is prepended to every lineage record id.
const LineagePrefix = "lin_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// CreateULID returns a time-sortable ULID encoded as a 26-character string.
func CreateULID() string {
	return createULIDAt(time.Now())
}

func createULIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return id.String()
}

// LineageGenerator produces a lineage record id for the given instant.
type LineageGenerator func(now time.Time) string

// UnixSecondsLineageID returns "lin_" followed by the integer unix seconds of
// now. Two calls within the same second return the same id.
func UnixSecondsLineageID(now time.Time) string {
	return LineagePrefix + strconv.FormatInt(now.Unix(), 10)
}

// ULIDLineageID returns "lin_" followed by a monotonic ULID, unique per call.
func ULIDLineageID(now time.Time) string {
	return LineagePrefix + createULIDAt(now)
}
