// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/tiff"
)

var (
	tiffHeaderLittleEndian = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffHeaderBigEndian    = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

const defaultLimitNumTags = 5000

// Rule describes which tags to collect from a TIFF tag tree and the
// logical field names to store them under.
// Rules are read-only once built and may be shared between goroutines.
type Rule struct {
	// Name is used in error messages.
	Name string

	// IFD is the rule for IFD0.
	IFD IFDRule
}

// IFDRule describes the fields to collect from one IFD.
type IFDRule struct {
	// Fields maps tag IDs to logical field names.
	// When the same field name is matched more than once, the first match wins.
	Fields map[uint16]string

	// Sub maps IFD pointer tags (e.g. 0x8769 ExifIFD, 0x014a SubIFDs) to the
	// rule for the directory they point to.
	Sub map[uint16]*IFDRule

	// Next is the rule for the next IFD in the chain (IFD1 for IFD0).
	Next *IFDRule

	// Select picks one directory when a pointer tag holds several offsets.
	// If nil, the first directory is used.
	Select *TagMatch
}

// TagMatch matches a directory holding Tag with the integer value Value.
type TagMatch struct {
	Tag   uint16
	Value int
}

// Parse parses the TIFF tag tree in b using rule.
// Offsets in the tree are relative to the start of b.
func Parse(b []byte, rule *Rule) (*ParsedInfo, error) {
	return parse(b, rule, defaultLimitNumTags)
}

func parse(b []byte, rule *Rule, limitNumTags uint32) (*ParsedInfo, error) {
	p := &ruleParser{
		r:     bytes.NewReader(b),
		size:  int64(len(b)),
		limit: limitNumTags,
		seen:  make(map[int64]bool),
	}

	wrap := func(err error) error {
		return &ParseError{Rule: rule.Name, Err: err}
	}

	if len(b) < 8 {
		return nil, wrap(errors.New("buffer too short for a TIFF header"))
	}

	switch {
	case bytes.HasPrefix(b, tiffHeaderLittleEndian):
		p.order = binary.LittleEndian
	case bytes.HasPrefix(b, tiffHeaderBigEndian):
		p.order = binary.BigEndian
	default:
		return nil, wrap(errors.New("missing TIFF header"))
	}

	p.info = &ParsedInfo{
		rule:   rule.Name,
		order:  p.order,
		fields: make(map[string]*tiff.Tag),
	}

	ifd0Offset := int64(p.order.Uint32(b[4:8]))
	if err := p.walk(ifd0Offset, &rule.IFD); err != nil {
		return nil, wrap(err)
	}

	return p.info, nil
}

type ruleParser struct {
	r     *bytes.Reader
	order binary.ByteOrder
	size  int64

	limit   uint32
	numTags uint32

	// Offsets of directories already read.
	seen map[int64]bool

	info *ParsedInfo
}

func (p *ruleParser) readDir(offset int64) (*tiff.Dir, int64, error) {
	if offset < 8 || offset >= p.size {
		return nil, 0, fmt.Errorf("IFD offset %d out of range", offset)
	}
	if p.seen[offset] {
		return nil, 0, fmt.Errorf("recursive IFD at offset %d", offset)
	}
	p.seen[offset] = true

	if _, err := p.r.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, err
	}
	d, next, err := tiff.DecodeDir(p.r, p.order)
	if err != nil {
		return nil, 0, fmt.Errorf("IFD at offset %d: %w", offset, err)
	}

	p.numTags += uint32(len(d.Tags))
	if p.numTags > p.limit {
		return nil, 0, fmt.Errorf("number of tags exceeds limit %d", p.limit)
	}

	return d, int64(uint32(next)), nil
}

func (p *ruleParser) walk(offset int64, rule *IFDRule) error {
	d, next, err := p.readDir(offset)
	if err != nil {
		return err
	}
	return p.applyAndFollow(d, next, rule)
}

func (p *ruleParser) applyAndFollow(d *tiff.Dir, next int64, rule *IFDRule) error {
	for _, t := range d.Tags {
		if name, ok := rule.Fields[t.Id]; ok {
			if _, found := p.info.fields[name]; !found {
				p.info.fields[name] = t
			}
		}
		if sub, ok := rule.Sub[t.Id]; ok {
			if err := p.walkSub(t, sub); err != nil {
				return err
			}
		}
	}

	if rule.Next != nil && next != 0 {
		return p.walk(next, rule.Next)
	}

	return nil
}

func (p *ruleParser) walkSub(t *tiff.Tag, rule *IFDRule) error {
	if t.Format() != tiff.IntVal {
		return fmt.Errorf("IFD pointer tag 0x%04x: unexpected type %d", t.Id, t.Type)
	}

	for i := 0; i < int(t.Count); i++ {
		offset, err := t.Int64(i)
		if err != nil {
			return fmt.Errorf("IFD pointer tag 0x%04x: %w", t.Id, err)
		}
		d, next, err := p.readDir(offset)
		if err != nil {
			return err
		}
		if rule.Select != nil && !dirMatches(d, rule.Select) {
			continue
		}
		return p.applyAndFollow(d, next, rule)
	}

	return nil
}

func dirMatches(d *tiff.Dir, m *TagMatch) bool {
	for _, t := range d.Tags {
		if t.Id != m.Tag || t.Format() != tiff.IntVal || t.Count == 0 {
			continue
		}
		v, err := t.Int(0)
		return err == nil && v == m.Value
	}
	return false
}
