// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"encoding/binary"
	"errors"
)

const compressionNone = 1

// rawLayout describes strip based sensor data.
type rawLayout struct {
	width       int
	height      int
	bps         int
	compression int
	offsets     []int
	counts      []int
	tiled       bool
}

// rawLayoutFromInfo reads the raw IFD fields, each name prefixed with prefix.
func rawLayoutFromInfo(info *ParsedInfo, prefix string) (rawLayout, error) {
	var (
		l   rawLayout
		err error
	)
	if l.width, err = info.Int(prefix + fieldWidth); err != nil {
		return l, err
	}
	if l.height, err = info.Int(prefix + fieldHeight); err != nil {
		return l, err
	}
	if l.bps, err = info.Int(prefix + fieldBitsPerSample); err != nil {
		return l, err
	}
	l.compression, err = info.Int(prefix + fieldCompression)
	if errors.Is(err, ErrFieldNotFound) {
		l.compression, err = compressionNone, nil
	}
	if err != nil {
		return l, err
	}
	l.tiled = info.Has(prefix + fieldTileOffsets)
	if l.tiled {
		return l, nil
	}
	if l.offsets, err = info.Ints(prefix + fieldStripOffsets); err != nil {
		return l, err
	}
	if l.counts, err = info.Ints(prefix + fieldStripByteCounts); err != nil {
		return l, err
	}
	return l, nil
}

// decode unpacks the sensor plane described by l from b.
func (l rawLayout) decode(b []byte, order binary.ByteOrder) ([]uint16, error) {
	if l.tiled {
		return nil, newNotImplementedErrorf("tiled raw data")
	}
	if l.compression != compressionNone {
		return nil, newNotImplementedErrorf("compression %d", l.compression)
	}
	data, err := stripData(b, l.offsets, l.counts)
	if err != nil {
		return nil, err
	}
	return unpackUncompressed(data, l.width, l.height, l.bps, order)
}

// stripData returns the strips of b concatenated.
func stripData(b []byte, offsets, counts []int) ([]byte, error) {
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return nil, newInvalidFormatErrorf("%d strip offsets, %d strip byte counts", len(offsets), len(counts))
	}
	for i, off := range offsets {
		if off < 0 || counts[i] < 0 || off > len(b) || counts[i] > len(b)-off {
			return nil, newInvalidFormatErrorf("strip %d out of bounds", i)
		}
	}
	if len(offsets) == 1 {
		return b[offsets[0] : offsets[0]+counts[0]], nil
	}

	var size int
	for _, n := range counts {
		size += n
	}
	if size > len(b) {
		return nil, newInvalidFormatErrorf("strips total %d bytes, more than the %d bytes of the file", size, len(b))
	}
	data := make([]byte, 0, size)
	for i, off := range offsets {
		data = append(data, b[off:off+counts[i]]...)
	}
	return data, nil
}

// unpackUncompressed unpacks width*height samples of bps bits from data.
// Samples wider than 8 bits are stored either in 16 bit containers in
// the given byte order or bit packed, MSB first, with rows padded to a byte.
func unpackUncompressed(data []byte, width, height, bps int, order binary.ByteOrder) ([]uint16, error) {
	if width <= 0 || height <= 0 {
		return nil, newInvalidFormatErrorf("invalid dimensions %dx%d", width, height)
	}
	if bps < 1 || bps > 16 {
		return nil, newInvalidFormatErrorf("unsupported bits per sample %d", bps)
	}

	rowBytes := (width*bps + 7) / 8
	if rowBytes > len(data)/height {
		return nil, newInvalidFormatErrorf("%d bytes of raw data is too short for %dx%d at %d bits", len(data), width, height, bps)
	}

	n := width * height
	img := make([]uint16, n)

	switch {
	case bps == 8:
		for i := range img {
			img[i] = uint16(data[i])
		}
	case bps > 8 && len(data)/2 >= n:
		for i := range img {
			img[i] = order.Uint16(data[i*2:])
		}
	default:
		pump := newBitPumpMSB(data)
		for y := 0; y < height; y++ {
			row := img[y*width : (y+1)*width]
			for x := range row {
				row[x] = uint16(pump.getBits(uint(bps)))
			}
			pump.alignByte()
		}
	}

	return img, nil
}
