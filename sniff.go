// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"bytes"
	"errors"
)

var exifMarker = []byte("Exif\x00\x00")

// sniff parses the dispatch fields (or any other rule) from b.
func sniff(b []byte, rule *Rule, opts Options) (*ParsedInfo, error) {
	return parse(b, rule, opts.LimitNumTags)
}

// sniffWithFallback parses b with rule. If b is not a TIFF tree itself, the
// first embedded TIFF tree is located and parsed instead. The returned
// buffer is the one all offsets in the returned info are relative to.
func sniffWithFallback(b []byte, rule *Rule, opts Options) (*ParsedInfo, []byte, error) {
	info, err := sniff(b, rule, opts)
	if err == nil {
		return info, b, nil
	}

	embedded, found := embeddedTIFFSlice(b, opts)
	if !found {
		return nil, nil, err
	}

	info, err = sniff(embedded, rule, opts)
	if err != nil {
		return nil, nil, err
	}

	// embedded is a sub slice of b.
	opts.Warnf("rule %s: using embedded TIFF tree at offset %d", rule.Name, cap(b)-cap(embedded))

	return info, embedded, nil
}

// embeddedTIFFSlice finds the TIFF tree embedded in b: the CMT1 box of a
// CR3 file, else the first TIFF header after an Exif marker, else the first
// TIFF header anywhere.
func embeddedTIFFSlice(b []byte, opts Options) ([]byte, bool) {
	if isCR3(b) {
		tree, err := cr3MetadataTree(b)
		if err == nil {
			return tree, true
		}
		if errors.Is(err, errBoxTruncated) {
			opts.Warnf("CR3: %s, scanning for a TIFF header", err)
		}
	}

	if i := bytes.Index(b, exifMarker); i >= 0 {
		after := b[i+len(exifMarker):]
		if isTIFFHeader(after) {
			return after, true
		}
		if j := indexTIFFHeader(after); j >= 0 {
			return after[j:], true
		}
	}

	if j := indexTIFFHeader(b); j >= 0 {
		return b[j:], true
	}

	return nil, false
}

func isTIFFHeader(b []byte) bool {
	return bytes.HasPrefix(b, tiffHeaderLittleEndian) || bytes.HasPrefix(b, tiffHeaderBigEndian)
}

func indexTIFFHeader(b []byte) int {
	le := bytes.Index(b, tiffHeaderLittleEndian)
	be := bytes.Index(b, tiffHeaderBigEndian)
	switch {
	case le < 0:
		return be
	case be < 0:
		return le
	default:
		return min(le, be)
	}
}
