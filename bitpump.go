// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

// bitPumpMSB reads bit packed samples, most significant bit first.
// Reads past the end of the buffer return zero bits.
// Note that this is not thread safe.
type bitPumpMSB struct {
	b   []byte
	pos int

	bits  uint64
	nbits uint
}

func newBitPumpMSB(b []byte) *bitPumpMSB {
	return &bitPumpMSB{b: b}
}

func (p *bitPumpMSB) fill() {
	for p.nbits <= 56 {
		var v byte
		if p.pos < len(p.b) {
			v = p.b[p.pos]
		}
		p.pos++
		p.bits |= uint64(v) << (56 - p.nbits)
		p.nbits += 8
	}
}

// getBits returns the next n bits, n <= 32.
func (p *bitPumpMSB) getBits(n uint) uint32 {
	if n == 0 {
		return 0
	}
	if p.nbits < n {
		p.fill()
	}
	v := uint32(p.bits >> (64 - n))
	p.bits <<= n
	p.nbits -= n
	return v
}

// alignByte drops the bits left in the current byte.
func (p *bitPumpMSB) alignByte() {
	drop := p.nbits % 8
	p.bits <<= drop
	p.nbits -= drop
}
