package bloom

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	// DefaultBits is the bit-array size used when New is given zero.
	DefaultBits = 1024

	// HashFunctions is k, the number of bits set per item.
	HashFunctions = 3

	headerBytes = 16
)

var (
	ErrBadEncoding = errors.New("bloom: encoded filter malformed")
	ErrBadSize     = errors.New("bloom: encoded size does not match bitset")
)

var multipliers = [HashFunctions]uint64{31, 37, 41}

// Filter is a fixed-size Bloom filter over strings.
type Filter struct {
	bits  []byte
	m     uint64
	count uint64
}

// New returns an empty filter with mBits bits, or DefaultBits if mBits is zero.
func New(mBits uint64) *Filter {
	if mBits == 0 {
		mBits = DefaultBits
	}
	return &Filter{
		bits: make([]byte, bitsetBytes(mBits)),
		m:    mBits,
	}
}

func bitsetBytes(mBits uint64) uint64 {
	n := mBits / 8
	if mBits%8 != 0 {
		n++
	}
	return n
}

func polyHash(item string, mul uint64) uint64 {
	var h uint64
	for i := 0; i < len(item); i++ {
		h = h*mul + uint64(item[i])
	}
	return h
}

// Positions returns the k bit indexes item maps to.
func (f *Filter) Positions(item string) [HashFunctions]uint64 {
	var pos [HashFunctions]uint64
	for i, mul := range multipliers {
		pos[i] = polyHash(item, mul) % f.m
	}
	return pos
}

// Add records item and bumps the insert counter.
func (f *Filter) Add(item string) {
	for _, j := range f.Positions(item) {
		f.bits[j>>3] |= 1 << (j & 7)
	}
	f.count++
}

// MightContain reports false only when item was never added.
func (f *Filter) MightContain(item string) bool {
	for _, j := range f.Positions(item) {
		if f.bits[j>>3]&(1<<(j&7)) == 0 {
			return false
		}
	}
	return true
}

// Clear resets every bit and the counter.
func (f *Filter) Clear() {
	clear(f.bits)
	f.count = 0
}

// FalsePositiveProbability returns (1 - e^(-k*n/m))^k.
func (f *Filter) FalsePositiveProbability() float64 {
	k := float64(HashFunctions)
	n := float64(f.count)
	m := float64(f.m)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// Count is the number of Add calls since the last Clear.
func (f *Filter) Count() uint64 { return f.count }

// Size is m, the number of bits.
func (f *Filter) Size() uint64 { return f.m }

// SetBits returns how many bits are currently set.
func (f *Filter) SetBits() int {
	n := 0
	for _, b := range f.bits {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

// MarshalBinary encodes the filter as m (8 bytes BE), count (8 bytes BE), bitset.
func (f *Filter) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerBytes+len(f.bits))
	binary.BigEndian.PutUint64(out[0:8], f.m)
	binary.BigEndian.PutUint64(out[8:16], f.count)
	copy(out[headerBytes:], f.bits)
	return out, nil
}

// UnmarshalBinary replaces the filter with the encoded state.
func (f *Filter) UnmarshalBinary(data []byte) error {
	if len(data) < headerBytes {
		return ErrBadEncoding
	}
	m := binary.BigEndian.Uint64(data[0:8])
	if m == 0 {
		return ErrBadEncoding
	}
	if uint64(len(data)-headerBytes) != bitsetBytes(m) {
		return ErrBadSize
	}
	f.m = m
	f.count = binary.BigEndian.Uint64(data[8:16])
	f.bits = make([]byte, bitsetBytes(m))
	copy(f.bits, data[headerBytes:])
	return nil
}
