package iec

import (
	"cmp"
	"errors"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// ErrNegative is returned when a signed magnitude is below zero.
var ErrNegative = errors.New("iec: negative magnitude")

// Value is a magnitude scaled to a single binary-prefixed unit. The zero
// Value is 0 bytes.
type Value struct {
	unit Unit
	val  float64
}

// New scales x into the largest unit whose divisor does not exceed it.
// Magnitudes beyond the Pebi range are expressed in EiB, so every uint64
// yields a Value between 0 and 16 EiB.
func New(x uint64) Value {
	u := Exbi
	if b := Bucket(x); b != Overflow {
		u = Unit(b)
	}
	val := float64(x) / float64(magnitudes[u])
	if u < Exbi && val >= 1024 {
		// float64(x) rounds up to the next power of 1024 at the very top of
		// a bucket; keep the magnitude inside [1, 1024).
		val = math.Nextafter(1024, 0)
	}
	return Value{unit: u, val: val}
}

// From scales an integer of any width. Negative values are rejected with
// ErrNegative rather than reinterpreted as large unsigned magnitudes.
func From[T constraints.Integer](x T) (Value, error) {
	if x < 0 {
		return Value{}, ErrNegative
	}
	return New(uint64(x)), nil
}

// Raw returns the scaled magnitude without its unit.
func (v Value) Raw() float64 {
	return v.val
}

// Unit returns the unit the magnitude was scaled to.
func (v Value) Unit() Unit {
	return v.unit
}

// Append appends the rendered value, e.g. "4.88KiB", to dst.
func (v Value) Append(dst []byte) []byte {
	dst = strconv.AppendFloat(dst, v.val, 'f', 2, 64)
	return append(dst, v.unit.String()...)
}

func (v Value) String() string {
	// Enough for "16.00EiB" and any 1023.99 + suffix.
	var buf [16]byte
	return string(v.Append(buf[:0]))
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return v.Append(nil), nil
}

// Compare orders values by unit, then by magnitude within the unit. It
// returns -1, 0 or +1.
func (v Value) Compare(w Value) int {
	if c := cmp.Compare(v.unit, w.unit); c != 0 {
		return c
	}
	return cmp.Compare(v.val, w.val)
}

// Less reports whether v orders before w.
func (v Value) Less(w Value) bool {
	return v.Compare(w) < 0
}

// Equal reports whether v and w carry the same unit and magnitude.
func (v Value) Equal(w Value) bool {
	return v.unit == w.unit && v.val == w.val
}
