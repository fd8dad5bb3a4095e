package delivery

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	idSuffixLength = 24
	idTimeHexLen   = 12
	idSeqHexLen    = 4

	seqMask         = 0x0fff
	randSuffixBytes = 4

	clockSleepStep = 1 * time.Millisecond
	clockSleepMax  = 100 * time.Millisecond
)

// ID is a payload identifier of the form
//
//	<resource>_<timestamp><sequence><random>
//
// where timestamp is the creation time in hex milliseconds, sequence is a
// monotonic per-millisecond counter and random is a tie-breaking suffix. Ids
// sharing a resource type sort lexicographically in creation order; the store
// relies on this to realize FIFO ordering without an index.
type ID string

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Resource returns the resource type embedded in the id.
func (id ID) Resource() (ResourceType, error) {
	sep := strings.LastIndexByte(string(id), '_')
	if sep <= 0 || len(id)-sep-1 != idSuffixLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, string(id))
	}
	if !isLowerHex(string(id[sep+1:])) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, string(id))
	}
	resource := ResourceType(id[:sep])
	if err := resource.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, string(id))
	}

	return resource, nil
}

// Time returns the creation timestamp embedded in the id, truncated to
// millisecond resolution.
func (id ID) Time() (time.Time, error) {
	if _, err := id.Resource(); err != nil {
		return time.Time{}, err
	}
	start := len(id) - idSuffixLength
	ms, err := strconv.ParseInt(string(id[start:start+idTimeHexLen]), 16, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, string(id))
	}

	return time.UnixMilli(ms).UTC(), nil
}

// ParseID validates a payload identifier.
func ParseID(value string) (ID, error) {
	id := ID(value)
	if _, err := id.Resource(); err != nil {
		return "", err
	}

	return id, nil
}

func isLowerHex(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// Generator creates new payload identifiers.
type Generator interface {
	// New returns a new identifier for the resource type.
	New(resource ResourceType) (ID, error)
}

// MonotonicGenerator produces identifiers whose lexicographic order equals
// creation order, even across clock rollback and bursts within the same
// millisecond. The sequence counter restarts at a random value each
// millisecond and waits out the clock when it would overflow.
type MonotonicGenerator struct {
	mu     sync.Mutex
	clock  Clock
	rand   io.Reader
	lastMS int64
	seq    uint16
}

// NewMonotonicGenerator creates a generator using the provided clock.
func NewMonotonicGenerator(clock Clock) *MonotonicGenerator {
	if clock == nil {
		clock = SystemClock{}
	}

	return &MonotonicGenerator{clock: clock, rand: rand.Reader}
}

// New creates a new identifier for the resource type.
func (g *MonotonicGenerator) New(resource ResourceType) (ID, error) {
	if err := resource.Validate(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now, err := g.nextTimestamp()
	if err != nil {
		return "", err
	}

	var randBytes [randSuffixBytes]byte
	if _, err := io.ReadFull(g.rand, randBytes[:]); err != nil {
		return "", err
	}

	id := ID(fmt.Sprintf(
		"%s_%0*x%0*x%s",
		resource,
		idTimeHexLen, now,
		idSeqHexLen, g.seq,
		hex.EncodeToString(randBytes[:]),
	))

	return id, nil
}

func (g *MonotonicGenerator) nextTimestamp() (int64, error) {
	now := g.clock.Now().UnixMilli()
	if now < g.lastMS {
		now = g.lastMS
	}
	if now != g.lastMS {
		g.lastMS = now
		seq, err := g.randSeq()
		if err != nil {
			return 0, err
		}
		g.seq = seq

		return now, nil
	}

	g.seq++
	if g.seq <= seqMask {
		return now, nil
	}

	now = g.waitNextMillisecond(now)
	seq, err := g.randSeq()
	if err != nil {
		return 0, err
	}
	g.lastMS = now
	g.seq = seq

	return now, nil
}

func (g *MonotonicGenerator) waitNextMillisecond(now int64) int64 {
	for now <= g.lastMS {
		drift := g.lastMS - now
		if drift > 0 {
			sleepFor := time.Duration(drift) * time.Millisecond
			if sleepFor > clockSleepMax {
				sleepFor = clockSleepMax
			}
			time.Sleep(sleepFor)
		} else {
			time.Sleep(clockSleepStep)
		}
		now = g.clock.Now().UnixMilli()
	}

	return now
}

func (g *MonotonicGenerator) randSeq() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
		return 0, err
	}
	seq := uint16(buf[0])<<8 | uint16(buf[1])

	return seq & seqMask, nil
}
