// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "bytes"

// CR3 is an ISO base media file; the ftyp box brand is at offset 4.
var cr3Magic = []byte("ftypcrx ")

func isCR3(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[4:12], cr3Magic)
}

// resolveThumbnail finds the preview JPEG in b, trying in order:
// the largest JPEG in a CR3 file, the maker decoder's lookup, and the
// largest JPEG anywhere in b if the metadata could not be read.
func resolveThumbnail(b []byte, opts Options) (Thumbnail, error) {
	if isCR3(b) {
		if jpg, ok := largestJPEGSlice(b); ok {
			return Thumbnail{Data: jpg, Orientation: Horizontal}, nil
		}
		opts.Warnf("no JPEG found in CR3 file, reading metadata")
	}

	dispatch, effective, err := sniffWithFallback(unwrapVendorContainer(b), dispatchRule, opts)
	if err != nil {
		if jpg, ok := largestJPEGSlice(b); ok {
			opts.Warnf("failed to read metadata, using the largest JPEG found: %s", err)
			return Thumbnail{Data: jpg, Orientation: Horizontal}, nil
		}
		return Thumbnail{}, err
	}

	jpg, orientation, err := selectAndDecodeThumbnail(dispatch, effective, opts)
	if err != nil {
		return Thumbnail{}, err
	}

	return Thumbnail{Data: jpg, Orientation: orientation}, nil
}
