// Package id generates the identifiers stamped on trade records and
// simulated orders.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// The PRNG is seeded from crypto/rand so IDs are not guessable across
	// runs; monotonic entropy keeps same-millisecond IDs ordered.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID string. ULIDs embed their creation time and sort
// lexicographically by it, which is what lets the trades table order rows by
// primary key and call it newest-first.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Entropy exhaustion or a clock far in the past; neither is
		// recoverable mid-run.
		panic(err)
	}
	return id.String()
}
