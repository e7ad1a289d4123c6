// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
)

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

func trimBytesNulls(b []byte) []byte {
	var lo, hi int
	for lo = 0; lo < len(b) && b[lo] == 0; lo++ {
	}
	for hi = len(b) - 1; hi >= 0 && b[hi] == 0; hi-- {
	}
	if lo > hi {
		return nil
	}
	return b[lo : hi+1]
}

// normalizeIdentifier turns a Make or Model value into a registry lookup key.
// Camera firmware writes these as ASCII, but some bodies use Latin-1.
func normalizeIdentifier(s string) string {
	b := trimBytesNulls([]byte(s))
	if !utf8.Valid(b) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
			b = decoded
		}
	}
	return cases.Fold().String(printableString(string(b)))
}
