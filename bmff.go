// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ISOBMFF box types used in CR3 containers.
var (
	fccMoov = fourCC{'m', 'o', 'o', 'v'}
	fccUUID = fourCC{'u', 'u', 'i', 'd'}
	fccCMT1 = fourCC{'C', 'M', 'T', '1'}
)

// canonMetadataUUID identifies the uuid box in moov holding the CMT boxes.
var canonMetadataUUID = []byte{
	0x85, 0xc0, 0xb6, 0x87, 0x82, 0x0f, 0x11, 0xe0,
	0x81, 0x11, 0xf4, 0xce, 0x46, 0x2b, 0x6a, 0x48,
}

type fourCC [4]byte

func (f fourCC) String() string {
	return string(f[:])
}

var (
	errBoxTruncated = errors.New("box truncated")
	errBoxNotFound  = errors.New("box not found")
)

// eachBox calls fn for each box in b with the box payload, a sub slice of b,
// until fn returns false.
func eachBox(b []byte, fn func(typ fourCC, payload []byte) bool) error {
	for len(b) > 0 {
		if len(b) < 8 {
			return errBoxTruncated
		}
		size := uint64(binary.BigEndian.Uint32(b))
		var typ fourCC
		copy(typ[:], b[4:8])
		header := uint64(8)

		switch size {
		case 0:
			// Extends to the end.
			size = uint64(len(b))
		case 1:
			// Extended size in the next 8 bytes.
			if len(b) < 16 {
				return errBoxTruncated
			}
			size = binary.BigEndian.Uint64(b[8:])
			header = 16
		}

		if size < header || size > uint64(len(b)) {
			return errBoxTruncated
		}
		if !fn(typ, b[header:size]) {
			return nil
		}
		b = b[size:]
	}
	return nil
}

// findBox returns the payload of the first box of type typ in b.
func findBox(b []byte, typ fourCC) ([]byte, error) {
	var (
		payload []byte
		found   bool
	)
	err := eachBox(b, func(t fourCC, p []byte) bool {
		if t == typ {
			payload, found = p, true
			return false
		}
		return true
	})
	switch {
	case found:
		return payload, nil
	case err != nil:
		return nil, fmt.Errorf("looking for %s: %w", typ, err)
	default:
		return nil, fmt.Errorf("%s: %w", typ, errBoxNotFound)
	}
}

// cr3MetadataTree returns the TIFF tree in the CMT1 box of a CR3 file:
// moov/uuid(Canon)/CMT1. The tree holds IFD0 with Make and Model.
// Malformed box trees give an error wrapping errBoxTruncated.
func cr3MetadataTree(b []byte) ([]byte, error) {
	moov, err := findBox(b, fccMoov)
	if err != nil {
		return nil, err
	}

	var tree []byte
	treeErr := fmt.Errorf("Canon uuid: %w", errBoxNotFound)
	err = eachBox(moov, func(typ fourCC, payload []byte) bool {
		if typ != fccUUID || !bytes.HasPrefix(payload, canonMetadataUUID) {
			return true
		}
		cmt1, err := findBox(payload[len(canonMetadataUUID):], fccCMT1)
		switch {
		case err != nil:
			treeErr = err
		case !isTIFFHeader(cmt1):
			treeErr = errors.New("CMT1 holds no TIFF tree")
		default:
			tree, treeErr = cmt1, nil
		}
		return false
	})

	switch {
	case tree != nil:
		return tree, nil
	case err != nil:
		return nil, fmt.Errorf("moov: %w", err)
	default:
		return nil, treeErr
	}
}
