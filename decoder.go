// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"errors"
	"fmt"
)

// Decoder decodes one raw file from the metadata it was constructed with.
// Methods never modify the held metadata and may be called repeatedly.
type Decoder interface {
	// Info returns the metadata the decoder was constructed with.
	Info() *ParsedInfo

	// Crop returns the active area, or nil if the format declares none.
	Crop() *Crop

	// CFAPattern returns the sensor's color filter array layout.
	CFAPattern() (CFAPattern, error)

	// DecodeWithPreprocess decodes the sensor plane in b.
	DecodeWithPreprocess(b []byte) ([]uint16, error)

	// Thumbnail returns the embedded preview JPEG in b.
	Thumbnail(b []byte) ([]byte, error)
}

// baseDecoder holds what all decoders share.
type baseDecoder struct {
	maker string
	model string
	info  *ParsedInfo
	opts  Options
}

func (d *baseDecoder) Info() *ParsedInfo {
	return d.info
}

func (d *baseDecoder) Crop() *Crop {
	return nil
}

// Thumbnail implements the preview lookup shared by all makers:
// the declared thumbnail if it is a displayable JPEG, else the largest
// displayable JPEG in b, else the first valid JPEG in b.
func (d *baseDecoder) Thumbnail(b []byte) ([]byte, error) {
	if jpg, ok := d.declaredThumbnail(b); ok {
		if isDisplayJPEG(jpg) {
			return jpg, nil
		}
		d.warnf("declared thumbnail is not a displayable JPEG")
	}

	if jpg, ok := largestDisplayJPEGSlice(b); ok {
		d.warnf("using the largest displayable JPEG found (%d bytes)", len(jpg))
		return jpg, nil
	}

	if jpg, ok := firstValidJPEGSlice(b); ok {
		d.warnf("no displayable JPEG found, using the first valid JPEG (%d bytes)", len(jpg))
		return jpg, nil
	}

	return nil, d.decodingError(&FieldError{Field: fieldThumbnail, Err: ErrFieldNotFound})
}

// declaredThumbnail returns the JPEG slice the metadata points to, if any.
func (d *baseDecoder) declaredThumbnail(b []byte) ([]byte, bool) {
	offset, err := d.info.Int(fieldThumbnail)
	if err != nil {
		return nil, false
	}
	length, err := d.info.Int(fieldThumbnailLen)
	if err != nil {
		return nil, false
	}
	if offset < 0 || length < 4 || offset > len(b) || length > len(b)-offset {
		d.warnf("declared thumbnail [%d:+%d] out of bounds", offset, length)
		return nil, false
	}
	jpg := b[offset : offset+length]
	if !isValidJPEG(jpg) {
		d.warnf("declared thumbnail at %d is not a valid JPEG", offset)
		return nil, false
	}
	return jpg, true
}

func (d *baseDecoder) orientation() Orientation {
	v, err := d.info.Int(fieldOrientation)
	if err != nil {
		return Horizontal
	}
	return orientationFromEXIF(v)
}

// size returns the dimensions of the decoded sensor plane.
func (d *baseDecoder) size() (int, int, error) {
	return d.dimensions("")
}

func (d *baseDecoder) dimensions(prefix string) (int, int, error) {
	w, err := d.info.Int(prefix + fieldWidth)
	if err != nil {
		return 0, 0, d.decodingError(err)
	}
	h, err := d.info.Int(prefix + fieldHeight)
	if err != nil {
		return 0, 0, d.decodingError(err)
	}
	return w, h, nil
}

func (d *baseDecoder) decodingError(err error) error {
	var derr *DecodingError
	if errors.As(err, &derr) {
		return err
	}
	return newDecodingError(d.maker, err)
}

func (d *baseDecoder) warnf(format string, args ...any) {
	d.opts.Warnf("%s: %s", d.maker, fmt.Sprintf(format, args...))
}

// internalDecoder is implemented by all decoders through baseDecoder.
type internalDecoder interface {
	Decoder
	size() (int, int, error)
	orientation() Orientation
	decodingError(err error) error
}

// cfaFromTags reads the TIFF/EP CFARepeatPatternDim and CFAPattern fields.
// Values are 0 for red, 1 for green and 2 for blue.
func cfaFromTags(info *ParsedInfo, prefix string) (CFAPattern, error) {
	pattern, err := info.Bytes(prefix + fieldCFAPattern)
	if err != nil {
		return 0, err
	}

	rows, cols := 2, 2
	if dim, err := info.Ints(prefix + fieldCFADim); err == nil && len(dim) == 2 {
		rows, cols = dim[0], dim[1]
	}

	return cfaFromPattern(rows, cols, pattern)
}

var cfaBayer = map[[4]byte]CFAPattern{
	{0, 1, 1, 2}: RGGB,
	{1, 0, 2, 1}: GRBG,
	{1, 2, 0, 1}: GBRG,
	{2, 1, 1, 0}: BGGR,
}

// X-Trans layouts are told apart by their first row.
var cfaXTransFirstRow = map[[6]byte]CFAPattern{
	{0, 2, 1, 2, 0, 1}: XTrans0,
	{1, 1, 0, 1, 1, 2}: XTrans1,
}

func cfaFromPattern(rows, cols int, pattern []byte) (CFAPattern, error) {
	switch {
	case rows == 2 && cols == 2 && len(pattern) >= 4:
		if p, ok := cfaBayer[[4]byte(pattern[:4])]; ok {
			return p, nil
		}
	case rows == 6 && cols == 6 && len(pattern) >= 36:
		if p, ok := cfaXTransFirstRow[[6]byte(pattern[:6])]; ok {
			return p, nil
		}
	}
	return 0, newInvalidFormatErrorf("unsupported CFA pattern %dx%d % x", rows, cols, pattern)
}
