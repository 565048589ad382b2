// Package iec scales byte counts into IEC binary-prefixed units (KiB, MiB, ...)
// and renders them with two fractional digits, e.g. "4.88KiB".
//
// Values are immutable and the package does no I/O, so everything here is
// safe to call from any goroutine. Value.Append renders without allocating
// when dst has room; String and MarshalText allocate the result.
package iec

// Unit identifies the binary prefix a Value was scaled to.
type Unit uint8

const (
	Byte Unit = iota
	Kibi
	Mebi
	Gibi
	Tebi
	Pebi
	Exbi
)

// Overflow is the bucket reported for magnitudes at or above 1 EiB.
const Overflow = 7

// magnitudes[i] is 1024^i.
var magnitudes = [...]uint64{
	1,
	1 << 10,
	1 << 20,
	1 << 30,
	1 << 40,
	1 << 50,
	1 << 60,
}

var suffixes = [...]string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

var names = [...]string{"byte", "kibibyte", "mebibyte", "gibibyte", "tebibyte", "pebibyte", "exbibyte"}

// Units lists every unit in ascending order.
func Units() []Unit {
	return []Unit{Byte, Kibi, Mebi, Gibi, Tebi, Pebi, Exbi}
}

// Bucket returns the index i such that 1024^i <= x < 1024^(i+1), for i in
// [0, 5]. Zero falls in bucket 0. Magnitudes of 1024^6 and above return
// Overflow.
func Bucket(x uint64) int {
	// Buckets are scanned in ascending order, so only the upper bound needs
	// checking.
	for i := 0; i < 6; i++ {
		if x < magnitudes[i+1] {
			return i
		}
	}
	return Overflow
}

// Divisor returns 1024 raised to the unit's exponent.
// It panics if u is not one of the declared units.
func Divisor(u Unit) uint64 {
	return magnitudes[u]
}

// String returns the short suffix, e.g. "KiB".
func (u Unit) String() string {
	if int(u) >= len(suffixes) {
		return "Unit(?)"
	}
	return suffixes[u]
}

// Name returns the long unit name, e.g. "kibibyte".
func (u Unit) Name() string {
	if int(u) >= len(names) {
		return "unknown"
	}
	return names[u]
}
