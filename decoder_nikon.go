// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

// nikonDecoder handles NEF files. The raw IFD is the full resolution SubIFD.
type nikonDecoder struct {
	baseDecoder
}

func newNikonDecoder(base baseDecoder) internalDecoder {
	return &nikonDecoder{baseDecoder: base}
}

func (d *nikonDecoder) CFAPattern() (CFAPattern, error) {
	p, err := cfaFromTags(d.info, "")
	if err != nil {
		return 0, d.decodingError(err)
	}
	return p, nil
}

func (d *nikonDecoder) DecodeWithPreprocess(b []byte) ([]uint16, error) {
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
