// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "bytes"

var (
	jpegSOI    = []byte{0xff, 0xd8, 0xff}
	jpegEOI    = []byte{0xff, 0xd9}
	markerJFIF = []byte{0xff, 0xe0, 'J', 'F'}
	markerExif = []byte{0xff, 0xe1, 'E', 'x'}
)

// Number of 4 byte window start positions checked for an APP marker.
const displayMarkerWindows = 40

// eachJPEGSlice calls fn for every non-overlapping FFD8FF..FFD9 run in b,
// left to right. Each run ends at the first FFD9 after the start marker,
// and scanning resumes after that end. fn returns false to stop.
func eachJPEGSlice(b []byte, fn func(start, end int) bool) {
	pos := 0
	for pos < len(b) {
		i := bytes.Index(b[pos:], jpegSOI)
		if i < 0 {
			return
		}
		start := pos + i
		bodyStart := start + len(jpegSOI)
		j := bytes.Index(b[bodyStart:], jpegEOI)
		if j < 0 {
			return
		}
		end := bodyStart + j + len(jpegEOI)
		if !fn(start, end) {
			return
		}
		pos = end
	}
}

// largestJPEGSlice returns the longest JPEG run in b, the first one on ties.
func largestJPEGSlice(b []byte) ([]byte, bool) {
	return largestJPEGSliceFunc(b, func([]byte) bool { return true })
}

// largestDisplayJPEGSlice returns the longest displayable JPEG run in b.
func largestDisplayJPEGSlice(b []byte) ([]byte, bool) {
	return largestJPEGSliceFunc(b, isDisplayJPEG)
}

func largestJPEGSliceFunc(b []byte, accept func([]byte) bool) ([]byte, bool) {
	bestStart, bestEnd := -1, -1
	eachJPEGSlice(b, func(start, end int) bool {
		if end-start > bestEnd-bestStart && accept(b[start:end]) {
			bestStart, bestEnd = start, end
		}
		return true
	})
	if bestStart < 0 {
		return nil, false
	}
	return b[bestStart:bestEnd], true
}

// firstValidJPEGSlice returns the first structurally valid JPEG run in b,
// with or without APP markers.
func firstValidJPEGSlice(b []byte) ([]byte, bool) {
	var found []byte
	eachJPEGSlice(b, func(start, end int) bool {
		if isValidJPEG(b[start:end]) {
			found = b[start:end]
			return false
		}
		return true
	})
	return found, found != nil
}

// isValidJPEG reports whether b starts with SOI and holds an EOI marker.
func isValidJPEG(b []byte) bool {
	return len(b) >= 4 && b[0] == 0xff && b[1] == 0xd8 && bytes.Contains(b[2:], jpegEOI)
}

// isDisplayJPEG reports whether b carries a JFIF or Exif APP marker near the
// start. JPEG encoded sensor data in raw files has neither.
func isDisplayJPEG(b []byte) bool {
	for i := 0; i < displayMarkerWindows && i+4 <= len(b); i++ {
		w := b[i : i+4]
		if bytes.Equal(w, markerJFIF) || bytes.Equal(w, markerExif) {
			return true
		}
	}
	return false
}
