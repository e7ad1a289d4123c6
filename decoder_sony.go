// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "errors"

// sonyDecoder handles ARW files.
type sonyDecoder struct {
	baseDecoder
}

func newSonyDecoder(base baseDecoder) internalDecoder {
	return &sonyDecoder{baseDecoder: base}
}

// Crop returns the area given by the SonyCropTopLeft and SonyCropSize tags.
func (d *sonyDecoder) Crop() *Crop {
	origin, err := d.info.Ints(fieldCropOrigin)
	if err != nil || len(origin) < 2 {
		return nil
	}
	size, err := d.info.Ints(fieldCropSize)
	if err != nil || len(size) < 2 {
		return nil
	}
	if origin[0] < 0 || origin[1] < 0 || size[0] <= 0 || size[1] <= 0 {
		return nil
	}
	return &Crop{
		X:      uint32(origin[0]),
		Y:      uint32(origin[1]),
		Width:  uint32(size[0]),
		Height: uint32(size[1]),
	}
}

// CFAPattern falls back to RGGB, which all Sony bodies use, when the tag is missing.
func (d *sonyDecoder) CFAPattern() (CFAPattern, error) {
	p, err := cfaFromTags(d.info, "")
	if errors.Is(err, ErrFieldNotFound) {
		return RGGB, nil
	}
	if err != nil {
		return 0, d.decodingError(err)
	}
	return p, nil
}

func (d *sonyDecoder) DecodeWithPreprocess(b []byte) ([]uint16, error) {
	l, err := rawLayoutFromInfo(d.info, "")
	if err != nil {
		return nil, d.decodingError(err)
	}
	img, err := l.decode(b, d.info.ByteOrder())
	if err != nil {
		return nil, d.decodingError(err)
	}
	return img, nil
}
