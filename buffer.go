// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// paddingSize is the number of zero bytes appended to every buffer so
// bit readers can look ahead past the last sample.
const paddingSize = 16

var fujiMagic = []byte("FUJI")

// fujiHeaderSize is the size of the RAF header preceding the embedded JPEG/EXIF.
const fujiHeaderSize = 148

// prepareBuffer pads b and strips any vendor container header.
// The returned slice may share no memory with b.
func prepareBuffer(b []byte) []byte {
	padded := make([]byte, len(b)+paddingSize)
	copy(padded, b)
	return unwrapVendorContainer(padded)
}

// unwrapVendorContainer strips the fixed size RAF header.
func unwrapVendorContainer(b []byte) []byte {
	if len(b) < fujiHeaderSize || !bytes.HasPrefix(b, fujiMagic) {
		return b
	}
	return b[fujiHeaderSize:]
}

// readFile reads a raw file into memory, classifying failures the way
// callers need them.
func readFile(filename string) ([]byte, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q: %w", ErrFileNotFound, filename, err)
		}
		return nil, fmt.Errorf("%w: %q: %w", ErrFileMetadata, filename, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %q: is a directory", ErrFileMetadata, filename)
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrFileContent, filename, err)
	}
	return b, nil
}
