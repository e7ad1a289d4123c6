// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/rwcarlsen/goexif/tiff"
)

// ParsedInfo holds the fields collected by Parse.
// It is never modified after Parse returns.
type ParsedInfo struct {
	rule   string
	order  binary.ByteOrder
	fields map[string]*tiff.Tag
}

// Rule returns the name of the rule that produced this info.
func (p *ParsedInfo) Rule() string {
	if p == nil {
		return ""
	}
	return p.rule
}

// ByteOrder returns the byte order of the parsed TIFF tree.
func (p *ParsedInfo) ByteOrder() binary.ByteOrder {
	if p == nil {
		return binary.LittleEndian
	}
	return p.order
}

// Has reports whether the field was found.
func (p *ParsedInfo) Has(name string) bool {
	_, err := p.tag(name)
	return err == nil
}

// Fields returns the sorted names of all fields found.
func (p *ParsedInfo) Fields() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.fields))
	for k := range p.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Int returns the first value of an integer field.
func (p *ParsedInfo) Int(name string) (int, error) {
	t, err := p.intTag(name)
	if err != nil {
		return 0, err
	}
	v, err := t.Int(0)
	if err != nil {
		return 0, &FieldError{Field: name, Err: err}
	}
	return v, nil
}

// Ints returns all values of an integer field.
func (p *ParsedInfo) Ints(name string) ([]int, error) {
	t, err := p.intTag(name)
	if err != nil {
		return nil, err
	}
	vals := make([]int, t.Count)
	for i := range vals {
		v, err := t.Int(i)
		if err != nil {
			return nil, &FieldError{Field: name, Err: err}
		}
		vals[i] = v
	}
	return vals, nil
}

// Str returns the value of an ASCII field with trailing NULs removed.
func (p *ParsedInfo) Str(name string) (string, error) {
	t, err := p.tag(name)
	if err != nil {
		return "", err
	}
	if t.Format() != tiff.StringVal {
		return "", &FieldError{Field: name, Err: ErrFieldType}
	}
	s, err := t.StringVal()
	if err != nil {
		return "", &FieldError{Field: name, Err: err}
	}
	return s, nil
}

// Float64s returns all values of a numeric field as float64.
// Integer, rational and floating point types are accepted.
// A rational with a zero denominator is returned as NaN.
func (p *ParsedInfo) Float64s(name string) ([]float64, error) {
	t, err := p.tag(name)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, t.Count)
	for i := range vals {
		switch t.Format() {
		case tiff.IntVal:
			v, err := t.Int64(i)
			if err != nil {
				return nil, &FieldError{Field: name, Err: err}
			}
			vals[i] = float64(v)
		case tiff.RatVal:
			num, den, err := t.Rat2(i)
			if err != nil {
				return nil, &FieldError{Field: name, Err: err}
			}
			if den == 0 {
				vals[i] = math.NaN()
			} else {
				vals[i] = float64(num) / float64(den)
			}
		case tiff.FloatVal:
			v, err := t.Float(i)
			if err != nil {
				return nil, &FieldError{Field: name, Err: err}
			}
			vals[i] = v
		default:
			return nil, &FieldError{Field: name, Err: ErrFieldType}
		}
	}
	return vals, nil
}

// Bytes returns the raw value bytes of a BYTE or UNDEFINED field.
func (p *ParsedInfo) Bytes(name string) ([]byte, error) {
	t, err := p.tag(name)
	if err != nil {
		return nil, err
	}
	switch t.Type {
	case tiff.DTByte, tiff.DTUndefined, tiff.DTSByte:
		return t.Val, nil
	default:
		return nil, &FieldError{Field: name, Err: ErrFieldType}
	}
}

func (p *ParsedInfo) tag(name string) (*tiff.Tag, error) {
	if p == nil {
		return nil, &FieldError{Field: name, Err: ErrFieldNotFound}
	}
	t, found := p.fields[name]
	if !found || t.Count == 0 {
		return nil, &FieldError{Field: name, Err: ErrFieldNotFound}
	}
	return t, nil
}

func (p *ParsedInfo) intTag(name string) (*tiff.Tag, error) {
	t, err := p.tag(name)
	if err != nil {
		return nil, err
	}
	if t.Format() != tiff.IntVal {
		return nil, &FieldError{Field: name, Err: ErrFieldType}
	}
	return t, nil
}
