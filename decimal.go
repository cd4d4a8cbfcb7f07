package odbcscan

import (
	"math/bits"
	"strings"
)

// Hugeint is a 128-bit signed integer, the widest decimal storage class.
type Hugeint struct {
	Lo uint64
	Hi int64
}

// HugeintFromInt64 widens a 64-bit value.
func HugeintFromInt64(v int64) Hugeint {
	h := Hugeint{Lo: uint64(v)}
	if v < 0 {
		h.Hi = -1
	}
	return h
}

// Int64 narrows to 64 bits, reporting whether the value fits.
func (h Hugeint) Int64() (int64, bool) {
	v := int64(h.Lo)
	if (v >= 0 && h.Hi == 0) || (v < 0 && h.Hi == -1) {
		return v, true
	}
	return 0, false
}

// IsNegative reports whether the value is below zero.
func (h Hugeint) IsNegative() bool {
	return h.Hi < 0
}

// Neg returns the arithmetic negation.
func (h Hugeint) Neg() Hugeint {
	lo := ^h.Lo + 1
	hi := ^h.Hi
	if lo == 0 {
		hi++
	}
	return Hugeint{Lo: lo, Hi: hi}
}

// String renders the value in base 10.
func (h Hugeint) String() string {
	neg := h.IsNegative()
	m := u128{lo: h.Lo, hi: uint64(h.Hi)}
	if neg {
		n := h.Neg()
		m = u128{lo: n.Lo, hi: uint64(n.Hi)}
	}
	s := m.String()
	if neg {
		s = "-" + s
	}
	return s
}

// u128 is the unsigned magnitude used while parsing digit strings.
type u128 struct {
	lo, hi uint64
}

// mul10add computes v*10 + d, reporting overflow past 128 bits.
func (v u128) mul10add(d uint64) (u128, bool) {
	hiProd, loProd := bits.Mul64(v.lo, 10)
	hi2, lo2 := bits.Mul64(v.hi, 10)
	if hi2 != 0 {
		return u128{}, false
	}
	newHi, carry := bits.Add64(lo2, hiProd, 0)
	if carry != 0 {
		return u128{}, false
	}
	newLo, carry := bits.Add64(loProd, d, 0)
	newHi, carry = bits.Add64(newHi, 0, carry)
	if carry != 0 {
		return u128{}, false
	}
	return u128{lo: newLo, hi: newHi}, true
}

func (v u128) less(o u128) bool {
	if v.hi != o.hi {
		return v.hi < o.hi
	}
	return v.lo < o.lo
}

func (v u128) isZero() bool {
	return v.lo == 0 && v.hi == 0
}

// divmod10 returns v/10 and v%10.
func (v u128) divmod10() (u128, uint64) {
	hiQuo, rem := bits.Div64(0, v.hi, 10)
	loQuo, rem := bits.Div64(rem, v.lo, 10)
	return u128{lo: loQuo, hi: hiQuo}, rem
}

func (v u128) String() string {
	if v.isZero() {
		return "0"
	}
	var buf [40]byte
	i := len(buf)
	for !v.isZero() {
		var d uint64
		v, d = v.divmod10()
		i--
		buf[i] = byte('0' + d)
	}
	return string(buf[i:])
}

// Powers of ten up to 10^38, the largest decimal width supported.
var pow10Table [defaultDecimalWidth + 1]u128

func init() {
	p := u128{lo: 1}
	for i := range pow10Table {
		pow10Table[i] = p
		p, _ = p.mul10add(0)
	}
}

// tryDecimalCast parses the exact text rendering of a decimal value into
// fixed-point storage scaled by 10^scale. Fractional digits beyond the
// scale are rounded half away from zero. A value whose magnitude does
// not fit the declared width fails the cast; callers treat that as NULL
// rather than aborting the scan.
func tryDecimalCast(s string, width, scale uint8) (Hugeint, bool) {
	s = strings.TrimSpace(s)
	if s == "" || width == 0 || width > defaultDecimalWidth || scale > width {
		return Hugeint{}, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return Hugeint{}, false
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return Hugeint{}, false
	}
	for i := 0; i < len(intPart); i++ {
		if intPart[i] < '0' || intPart[i] > '9' {
			return Hugeint{}, false
		}
	}
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return Hugeint{}, false
		}
	}

	var (
		m  u128
		ok bool
	)
	for i := 0; i < len(intPart); i++ {
		if m, ok = m.mul10add(uint64(intPart[i] - '0')); !ok {
			return Hugeint{}, false
		}
	}
	for i := 0; i < int(scale); i++ {
		d := uint64(0)
		if i < len(fracPart) {
			d = uint64(fracPart[i] - '0')
		}
		if m, ok = m.mul10add(d); !ok {
			return Hugeint{}, false
		}
	}
	// Round on the first dropped fractional digit.
	if len(fracPart) > int(scale) && fracPart[scale] >= '5' {
		if m, ok = m.add1(); !ok {
			return Hugeint{}, false
		}
	}

	if !m.less(pow10Table[width]) {
		return Hugeint{}, false
	}

	h := Hugeint{Lo: m.lo, Hi: int64(m.hi)}
	if neg {
		h = h.Neg()
	}
	return h, true
}

func (v u128) add1() (u128, bool) {
	lo, carry := bits.Add64(v.lo, 1, 0)
	hi, carry := bits.Add64(v.hi, 0, carry)
	if carry != 0 {
		return u128{}, false
	}
	return u128{lo: lo, hi: hi}, true
}

// renderDecimal is the inverse of tryDecimalCast: the canonical text form
// of a fixed-point value at the given scale.
func renderDecimal(h Hugeint, scale uint8) string {
	s := h.String()
	if scale == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for len(s) <= int(scale) {
		s = "0" + s
	}
	cut := len(s) - int(scale)
	out := s[:cut] + "." + s[cut:]
	if neg {
		out = "-" + out
	}
	return out
}
