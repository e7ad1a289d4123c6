// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"encoding/binary"
)

// Builders for raw file shaped buffers. The sensor data and previews are
// synthetic; only the container layout matches the real formats.

// testCR2 returns a CR2 shaped buffer with thumb referenced from IFD1.
// thumb is the last thing in the buffer.
func testCR2(model string, orientation uint16, thumb []byte) []byte {
	ifd1 := newIFD().blob(tagJPEGOffset, thumb).long(tagJPEGLength, uint32(len(thumb)))
	ifd0 := newIFD().
		ascii(tagMake, "Canon").
		ascii(tagModel, model).
		short(tagOrientation, orientation).
		sub(tagExifIFDPointer, newIFD().long(tagExifImageWidth, 6720).long(tagExifImageHeight, 4480)).
		setNext(ifd1)
	return newTIFF(binary.LittleEndian, ifd0).build()
}

// testCR2Declared returns a CR2 shaped buffer whose IFD1 declares a
// thumbnail at the start of trailer with the given length. trailer is
// appended after the TIFF tree.
func testCR2Declared(length int, trailer []byte) []byte {
	build := func(offset uint32) []byte {
		ifd1 := newIFD().long(tagJPEGOffset, offset).long(tagJPEGLength, uint32(length))
		ifd0 := newIFD().
			ascii(tagMake, "Canon").
			ascii(tagModel, "Canon EOS 5D Mark IV").
			short(tagOrientation, 8).
			setNext(ifd1)
		return newTIFF(binary.LittleEndian, ifd0).build()
	}
	// The layout does not depend on the offset value.
	tree := build(0)
	tree = build(uint32(len(tree)))
	return append(tree, trailer...)
}

type testRawIFD struct {
	width, height int
	bps           uint16
	compression   uint16
	data          []byte
	cfaDim        []uint16
	cfa           []byte
}

func (r testRawIFD) ifd(subfileType uint32) *testIFD {
	d := newIFD().
		long(tagNewSubfileType, subfileType).
		long(tagImageWidth, uint32(r.width)).
		long(tagImageLength, uint32(r.height)).
		short(tagBitsPerSample, r.bps).
		short(tagCompression, r.compression).
		long(tagRowsPerStrip, uint32(r.height)).
		blob(tagStripOffsets, r.data).
		long(tagStripByteCounts, uint32(len(r.data)))
	if r.cfa != nil {
		d.short(tagCFARepeatPatternDim, r.cfaDim...).bytes(tagCFAPattern, typeByte, r.cfa...)
	}
	return d
}

func previewIFD(preview []byte) *testIFD {
	return newIFD().
		long(tagNewSubfileType, subfileTypeReduced).
		blob(tagJPEGOffset, preview).
		long(tagJPEGLength, uint32(len(preview)))
}

// testNEF returns a big endian NEF shaped buffer.
func testNEF(raw testRawIFD, preview []byte) []byte {
	ifd0 := newIFD().
		ascii(tagMake, "NIKON CORPORATION").
		ascii(tagModel, "NIKON D850").
		short(tagOrientation, 1).
		sub(tagSubIFDs, previewIFD(preview), raw.ifd(subfileTypeFullResolution))
	return newTIFF(binary.BigEndian, ifd0).build()
}

// testARW returns an ARW shaped buffer with crop tags.
func testARW(raw testRawIFD, preview []byte, cropOrigin, cropSize [2]uint32) []byte {
	rawIFD := raw.ifd(subfileTypeFullResolution).
		long(tagSonyCropTopLeft, cropOrigin[0], cropOrigin[1]).
		long(tagSonyCropSize, cropSize[0], cropSize[1])
	ifd0 := newIFD().
		long(tagNewSubfileType, subfileTypeReduced).
		ascii(tagMake, "SONY").
		ascii(tagModel, "ILCE-7M3").
		short(tagOrientation, 6).
		blob(tagJPEGOffset, preview).
		long(tagJPEGLength, uint32(len(preview))).
		sub(tagSubIFDs, rawIFD)
	return newTIFF(binary.LittleEndian, ifd0).build()
}

type testDNGOptions struct {
	// Store the raw image in IFD0 instead of a SubIFD.
	rawInIFD0 bool

	preview []byte
	neutral []uint32
	matrix  []int32

	cropOrigin []uint32
	cropSize   []uint32
}

func testDNG(raw testRawIFD, opts testDNGOptions) []byte {
	rawIFD := raw.ifd(subfileTypeFullResolution)
	if opts.cropOrigin != nil {
		rawIFD.rational(tagDefaultCropOrigin, opts.cropOrigin...).rational(tagDefaultCropSize, opts.cropSize...)
	}

	ifd0 := rawIFD
	if !opts.rawInIFD0 {
		ifd0 = newIFD().long(tagNewSubfileType, subfileTypeReduced)
		subs := []*testIFD{rawIFD}
		if opts.preview != nil {
			subs = []*testIFD{
				newIFD().
					long(tagNewSubfileType, subfileTypeReduced).
					short(tagCompression, 7).
					blob(tagStripOffsets, opts.preview).
					long(tagStripByteCounts, uint32(len(opts.preview))),
				rawIFD,
			}
		}
		ifd0.sub(tagSubIFDs, subs...)
	}

	ifd0.
		ascii(tagMake, "Leica Camera AG").
		ascii(tagModel, "LEICA Q2").
		short(tagOrientation, 3).
		bytes(tagDNGVersion, typeByte, 1, 4, 0, 0)
	if opts.neutral != nil {
		ifd0.rational(tagAsShotNeutral, opts.neutral...)
	}
	if opts.matrix != nil {
		ifd0.srational(tagColorMatrix1, opts.matrix...)
	}

	return newTIFF(binary.LittleEndian, ifd0).build()
}

// testRAF returns a RAF shaped buffer: the RAF header followed by a JPEG
// whose Exif segment references thumb.
func testRAF(model string, thumb []byte) []byte {
	tree := newTIFF(binary.BigEndian, newIFD().
		ascii(tagMake, "FUJIFILM").
		ascii(tagModel, model).
		short(tagOrientation, 8).
		sub(tagExifIFDPointer, newIFD().long(tagExifImageWidth, 6240).long(tagExifImageHeight, 4160)).
		setNext(newIFD().blob(tagJPEGOffset, thumb).long(tagJPEGLength, uint32(len(thumb)))),
	).build()

	var b []byte
	b = append(b, "FUJIFILMCCD-RAW 0201FF383501"...)
	b = append(b, make([]byte, fujiHeaderSize-len(b))...)
	b = append(b, 0xff, 0xd8, 0xff, 0xe1, 0x00, 0x00)
	b = append(b, exifMarker...)
	b = append(b, tree...)
	b = append(b, 0x01, 0x02, 0x03, 0xff, 0xd9)
	return b
}

// testBox returns an ISOBMFF box.
func testBox(typ string, payload ...[]byte) []byte {
	size := 8
	for _, p := range payload {
		size += len(p)
	}
	b := binary.BigEndian.AppendUint32(nil, uint32(size))
	b = append(b, typ...)
	for _, p := range payload {
		b = append(b, p...)
	}
	return b
}

// testCR3 returns a CR3 shaped buffer: ftyp, moov with Canon's metadata
// uuid box holding CMT1, then one mdat box per JPEG stream.
func testCR3(jpegs ...[]byte) []byte {
	tree := newTIFF(binary.LittleEndian, newIFD().
		ascii(tagMake, "Canon").
		ascii(tagModel, "Canon EOS R5").
		short(tagOrientation, 6).
		sub(tagExifIFDPointer, newIFD().long(tagExifImageWidth, 8192).long(tagExifImageHeight, 5464)),
	).build()

	b := testBox("ftyp", []byte("crx \x00\x00\x00\x01crx isom"))
	b = append(b, testBox("moov", testBox("uuid", canonMetadataUUID, testBox("CMT1", tree)))...)
	for _, jpg := range jpegs {
		b = append(b, testBox("mdat", jpg)...)
	}
	return b
}

// packMSB packs samples of bps bits MSB first, rows padded to a byte.
func packMSB(samples []uint16, width, bps int) []byte {
	var (
		out   []byte
		acc   uint64
		nbits int
	)
	flush := func() {
		for nbits >= 8 {
			out = append(out, byte(acc>>(nbits-8)))
			nbits -= 8
		}
	}
	for i, s := range samples {
		acc = acc<<bps | uint64(s)
		nbits += bps
		flush()
		if (i+1)%width == 0 && nbits > 0 {
			acc <<= 8 - nbits
			nbits = 8
			flush()
		}
		acc &= 1<<nbits - 1
	}
	return out
}
