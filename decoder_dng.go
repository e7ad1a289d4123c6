// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "math"

// dngDecoder handles DNG files from any maker.
// The raw image is either in a SubIFD or in IFD0; see rawIFDPrefix.
type dngDecoder struct {
	baseDecoder
}

func newDNGDecoder(base baseDecoder) internalDecoder {
	return &dngDecoder{baseDecoder: base}
}

// rawIFDPrefix returns the field name prefix of the full resolution raw IFD.
func (d *dngDecoder) rawIFDPrefix() (string, error) {
	if d.info.Has(fieldWidth) {
		return "", nil
	}
	if !d.info.Has(fieldPrefixIFD0 + fieldWidth) {
		return "", d.decodingError(newInvalidFormatErrorf("no raw IFD"))
	}
	if st, err := d.info.Int(fieldPrefixIFD0 + fieldSubfileType); err == nil && st != subfileTypeFullResolution {
		return "", d.decodingError(newInvalidFormatErrorf("no full resolution raw IFD"))
	}
	return fieldPrefixIFD0, nil
}

func (d *dngDecoder) size() (int, int, error) {
	prefix, err := d.rawIFDPrefix()
	if err != nil {
		return 0, 0, err
	}
	return d.dimensions(prefix)
}

// Crop returns the DefaultCrop area, or nil if it covers the full image.
func (d *dngDecoder) Crop() *Crop {
	prefix, err := d.rawIFDPrefix()
	if err != nil {
		return nil
	}
	origin, err := d.info.Float64s(prefix + fieldCropOrigin)
	if err != nil || len(origin) < 2 {
		return nil
	}
	size, err := d.info.Float64s(prefix + fieldCropSize)
	if err != nil || len(size) < 2 {
		return nil
	}
	for _, v := range [...]float64{origin[0], origin[1], size[0], size[1]} {
		if v < 0 || v > math.MaxUint32 || math.IsNaN(v) {
			return nil
		}
	}

	c := &Crop{
		X:      uint32(origin[0]),
		Y:      uint32(origin[1]),
		Width:  uint32(size[0]),
		Height: uint32(size[1]),
	}

	if w, h, err := d.dimensions(prefix); err == nil && c.X == 0 && c.Y == 0 && int(c.Width) == w && int(c.Height) == h {
		return nil
	}

	return c
}

func (d *dngDecoder) CFAPattern() (CFAPattern, error) {
	prefix, err := d.rawIFDPrefix()
	if err != nil {
		return 0, err
	}
	p, err := cfaFromTags(d.info, prefix)
	if err != nil {
		return 0, d.decodingError(err)
	}
	return p, nil
}

func (d *dngDecoder) DecodeWithPreprocess(b []byte) ([]uint16, error) {
	prefix, err := d.rawIFDPrefix()
	if err != nil {
		return nil, err
	}
	l, err := rawLayoutFromInfo(d.info, prefix)
	if err != nil {
		return nil, d.decodingError(err)
	}
	img, err := l.decode(b, d.info.ByteOrder())
	if err != nil {
		return nil, d.decodingError(err)
	}
	return img, nil
}

// WhiteBalance returns the gains derived from AsShotNeutral.
func (d *dngDecoder) WhiteBalance() [3]int32 {
	neutral, err := d.info.Float64s(fieldAsShotNeutral)
	if err != nil {
		return defaultWhiteBalance
	}
	wb, ok := whiteBalanceFromNeutral(neutral)
	if !ok {
		d.warnf("ignoring invalid AsShotNeutral %v", neutral)
	}
	return wb
}

// CamMatrix returns the inverse of ColorMatrix1.
func (d *dngDecoder) CamMatrix() [9]float32 {
	m, err := d.info.Float64s(fieldColorMatrix)
	if err != nil {
		return identityCamMatrix
	}
	inv, ok := invert3x3(m)
	if !ok {
		d.warnf("ignoring singular ColorMatrix1")
	}
	return inv
}
