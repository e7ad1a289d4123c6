// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

// Builders exported to the rawmeta_test package.

func NewTestJPEG(size int, displayable bool) []byte {
	return testJPEG(size, displayable)
}

func NewTestCR2(model string, orientation uint16, thumb []byte) []byte {
	return testCR2(model, orientation, thumb)
}

func NewTestCR3(jpegs ...[]byte) []byte {
	return testCR3(jpegs...)
}

func NewTestRAF(model string, thumb []byte) []byte {
	return testRAF(model, thumb)
}

// NewTestNEF returns a NEF with an 8 bit RGGB sensor plane.
func NewTestNEF(width, height int, data, preview []byte) []byte {
	return testNEF(testRawIFD{
		width:       width,
		height:      height,
		bps:         8,
		compression: compressionNone,
		data:        data,
		cfaDim:      []uint16{2, 2},
		cfa:         []byte{0, 1, 1, 2},
	}, preview)
}

// NewTestDNG returns a DNG with a 16 bit little endian BGGR sensor plane.
func NewTestDNG(width, height int, data, preview []byte) []byte {
	return testDNG(testRawIFD{
		width:       width,
		height:      height,
		bps:         16,
		compression: compressionNone,
		data:        data,
		cfaDim:      []uint16{2, 2},
		cfa:         []byte{2, 1, 1, 0},
	}, testDNGOptions{preview: preview, neutral: []uint32{1, 2, 1, 1, 1, 2}})
}
