// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

// canonDecoder handles CR2 and the TIFF tree embedded in CR3.
type canonDecoder struct {
	baseDecoder
}

func newCanonDecoder(base baseDecoder) internalDecoder {
	return &canonDecoder{baseDecoder: base}
}

func (d *canonDecoder) CFAPattern() (CFAPattern, error) {
	return RGGB, nil
}

// DecodeWithPreprocess always fails, Canon stores sensor data losslessly
// compressed (CR2 lossless JPEG, CR3 CRX).
func (d *canonDecoder) DecodeWithPreprocess(b []byte) ([]uint16, error) {
	return nil, d.decodingError(newNotImplementedErrorf("Canon sensor data (model %q)", d.model))
}
