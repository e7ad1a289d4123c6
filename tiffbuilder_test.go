// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"encoding/binary"
	"sort"
)

// TIFF field types used in tests.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
	typeSRational = 10
)

// testIFD is an IFD to be written by tiffBuilder.
type testIFD struct {
	entries []*testEntry
	next    *testIFD

	offset int
}

type testEntry struct {
	tag    uint16
	typ    uint16
	raw    []byte
	shorts []uint16
	longs  []uint32
	rats   []uint32

	// Written as LONG offsets.
	subs        []*testIFD
	blobs       [][]byte
	blobOffsets []uint32
}

func newIFD() *testIFD {
	return &testIFD{}
}

func (d *testIFD) add(e *testEntry) *testIFD {
	d.entries = append(d.entries, e)
	return d
}

func (d *testIFD) ascii(tag uint16, s string) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeASCII, raw: append([]byte(s), 0)})
}

func (d *testIFD) short(tag uint16, v ...uint16) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeShort, shorts: v})
}

func (d *testIFD) long(tag uint16, v ...uint32) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeLong, longs: v})
}

// rational adds num/den pairs.
func (d *testIFD) rational(tag uint16, v ...uint32) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeRational, rats: v})
}

// srational adds signed num/den pairs.
func (d *testIFD) srational(tag uint16, v ...int32) *testIFD {
	rats := make([]uint32, len(v))
	for i, n := range v {
		rats[i] = uint32(n)
	}
	return d.add(&testEntry{tag: tag, typ: typeSRational, rats: rats})
}

func (d *testIFD) bytes(tag uint16, typ uint16, v ...byte) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typ, raw: v})
}

// sub adds an IFD pointer tag.
func (d *testIFD) sub(tag uint16, ifds ...*testIFD) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeLong, subs: ifds})
}

// blob adds a tag holding the offsets of data stored after all IFDs.
func (d *testIFD) blob(tag uint16, data ...[]byte) *testIFD {
	return d.add(&testEntry{tag: tag, typ: typeLong, blobs: data})
}

func (d *testIFD) setNext(next *testIFD) *testIFD {
	d.next = next
	return d
}

func (e *testEntry) count() int {
	switch {
	case e.subs != nil:
		return len(e.subs)
	case e.blobs != nil:
		return len(e.blobs)
	case e.shorts != nil:
		return len(e.shorts)
	case e.longs != nil:
		return len(e.longs)
	case e.rats != nil:
		return len(e.rats) / 2
	default:
		return len(e.raw)
	}
}

func (e *testEntry) value(order binary.AppendByteOrder) []byte {
	var b []byte
	switch {
	case e.subs != nil:
		for _, s := range e.subs {
			b = order.AppendUint32(b, uint32(s.offset))
		}
	case e.blobs != nil:
		for _, off := range e.blobOffsets {
			b = order.AppendUint32(b, off)
		}
	case e.shorts != nil:
		for _, v := range e.shorts {
			b = order.AppendUint16(b, v)
		}
	case e.longs != nil:
		for _, v := range e.longs {
			b = order.AppendUint32(b, v)
		}
	case e.rats != nil:
		for _, v := range e.rats {
			b = order.AppendUint32(b, v)
		}
	default:
		b = e.raw
	}
	return b
}

func (e *testEntry) valueSize() int {
	switch {
	case e.subs != nil, e.blobs != nil, e.longs != nil:
		return 4 * e.count()
	case e.shorts != nil:
		return 2 * len(e.shorts)
	case e.rats != nil:
		return 4 * len(e.rats)
	default:
		return len(e.raw)
	}
}

func (d *testIFD) size() int {
	n := 2 + 12*len(d.entries) + 4
	for _, e := range d.entries {
		if s := e.valueSize(); s > 4 {
			n += s + s%2
		}
	}
	return n
}

type testByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// tiffBuilder writes a TIFF tree. IFDs come first, in depth first order,
// then all blobs in the order they were added. The last blob added ends
// the buffer.
type tiffBuilder struct {
	order testByteOrder
	root  *testIFD
}

func newTIFF(order testByteOrder, root *testIFD) *tiffBuilder {
	return &tiffBuilder{order: order, root: root}
}

func (b *tiffBuilder) build() []byte {
	var ifds []*testIFD
	seen := make(map[*testIFD]bool)
	var collect func(d *testIFD)
	collect = func(d *testIFD) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		ifds = append(ifds, d)
		for _, e := range d.entries {
			for _, s := range e.subs {
				collect(s)
			}
		}
		collect(d.next)
	}
	collect(b.root)

	offset := 8
	for _, d := range ifds {
		sort.SliceStable(d.entries, func(i, j int) bool { return d.entries[i].tag < d.entries[j].tag })
		d.offset = offset
		offset += d.size()
	}

	var blobs [][]byte
	for _, d := range ifds {
		for _, e := range d.entries {
			e.blobOffsets = e.blobOffsets[:0]
			for _, bl := range e.blobs {
				e.blobOffsets = append(e.blobOffsets, uint32(offset))
				blobs = append(blobs, bl)
				offset += len(bl)
			}
		}
	}

	buf := make([]byte, 0, offset)
	if b.order == binary.BigEndian {
		buf = append(buf, tiffHeaderBigEndian...)
	} else {
		buf = append(buf, tiffHeaderLittleEndian...)
	}
	buf = b.order.AppendUint32(buf, uint32(b.root.offset))

	for _, d := range ifds {
		buf = b.order.AppendUint16(buf, uint16(len(d.entries)))
		extraOffset := d.offset + 2 + 12*len(d.entries) + 4
		var extra []byte
		for _, e := range d.entries {
			buf = b.order.AppendUint16(buf, e.tag)
			buf = b.order.AppendUint16(buf, e.typ)
			buf = b.order.AppendUint32(buf, uint32(e.count()))
			v := e.value(b.order)
			if len(v) <= 4 {
				var inline [4]byte
				copy(inline[:], v)
				buf = append(buf, inline[:]...)
				continue
			}
			buf = b.order.AppendUint32(buf, uint32(extraOffset+len(extra)))
			extra = append(extra, v...)
			if len(v)%2 == 1 {
				extra = append(extra, 0)
			}
		}
		var next uint32
		if d.next != nil {
			next = uint32(d.next.offset)
		}
		buf = b.order.AppendUint32(buf, next)
		buf = append(buf, extra...)
	}

	for _, bl := range blobs {
		buf = append(buf, bl...)
	}

	return buf
}

// testJPEG returns a minimal JPEG stream of exactly size bytes, size >= 12.
// Displayable streams carry a JFIF APP0 marker after SOI.
func testJPEG(size int, displayable bool) []byte {
	b := make([]byte, size)
	b[0], b[1], b[2] = 0xff, 0xd8, 0xff
	if displayable {
		copy(b[2:], markerJFIF)
		copy(b[6:], "IF\x00")
	} else {
		b[3] = 0xc4
	}
	// Filler must not contain 0xff.
	for i := 9; i < size-2; i++ {
		b[i] = byte(i%200) + 1
	}
	b[size-2], b[size-1] = 0xff, 0xd9
	return b
}
