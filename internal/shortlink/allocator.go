package shortlink

import (
	"context"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Alphabet holds the URL-safe symbols codes are built from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultCodeLength gives ~3.5e12 combinations over the base62 alphabet,
// enough to keep random collisions negligible at expected registry sizes.
const DefaultCodeLength = 7

// Allocator proposes candidate codes. Uniqueness is decided by the Registry's
// insert-if-absent, not here: the allocator proposes, the insert commits.
type Allocator interface {
	Allocate(ctx context.Context) (Code, error)
}

// RandomAllocator draws random base62 codes of fixed length.
type RandomAllocator struct {
	generate func() string
}

// NewRandomAllocator creates a random allocator with codes of the given length.
func NewRandomAllocator(length int) (*RandomAllocator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return &RandomAllocator{generate: gen}, nil
}

func (a *RandomAllocator) Allocate(_ context.Context) (Code, error) {
	return Code(a.generate()), nil
}

// Sequence hands out strictly increasing values. Implementations must be
// backed by a single serialized source (a storage-side atomic increment),
// never by in-process memory shared across instances.
type Sequence interface {
	Next(ctx context.Context) (uint64, error)
}

// SequenceAllocator encodes a monotonic counter into the alphabet.
// Codes never collide, so registration needs no retries, at the cost of a
// storage round trip per allocation.
type SequenceAllocator struct {
	seq Sequence
}

// NewSequenceAllocator creates a counter-based allocator.
func NewSequenceAllocator(seq Sequence) *SequenceAllocator {
	return &SequenceAllocator{seq: seq}
}

func (a *SequenceAllocator) Allocate(ctx context.Context) (Code, error) {
	n, err := a.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("advance code sequence: %w", err)
	}

	return Code(encodeBase62(n)), nil
}

func encodeBase62(n uint64) string {
	if n == 0 {
		return string(Alphabet[0])
	}

	const base = uint64(len(Alphabet))

	buf := make([]byte, 0, 11) // 62^11 > 2^64
	for n > 0 {
		buf = append(buf, Alphabet[n%base])
		n /= base
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}
