// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

// fujifilmCFA maps normalized model names to their sensor layout.
// Models not listed here are not supported.
var fujifilmCFA = map[string]CFAPattern{
	// X-Trans I and II.
	"x-pro1": XTrans1,
	"x-e1":   XTrans1,
	"x-e2":   XTrans1,
	"x-e2s":  XTrans1,
	"x-m1":   XTrans1,
	"x-t1":   XTrans1,
	"x-t10":  XTrans1,
	"x100s":  XTrans1,
	"x100t":  XTrans1,
	"x30":    XTrans1,
	"x70":    XTrans1,
	"xq1":    XTrans1,
	"xq2":    XTrans1,

	// X-Trans III and later.
	"x-pro2": XTrans0,
	"x-pro3": XTrans0,
	"x-e3":   XTrans0,
	"x-e4":   XTrans0,
	"x-h1":   XTrans0,
	"x-h2":   XTrans0,
	"x-h2s":  XTrans0,
	"x-s10":  XTrans0,
	"x-s20":  XTrans0,
	"x-t2":   XTrans0,
	"x-t3":   XTrans0,
	"x-t4":   XTrans0,
	"x-t5":   XTrans0,
	"x-t20":  XTrans0,
	"x-t30":  XTrans0,
	"x-t50":  XTrans0,
	"x100f":  XTrans0,
	"x100v":  XTrans0,
	"x100vi": XTrans0,

	// Bayer.
	"gfx 50s": RGGB,
	"gfx 50r": RGGB,
	"gfx100":  RGGB,
	"gfx100s": RGGB,
	"x-a5":    RGGB,
	"x-a7":    RGGB,
	"x-t100":  RGGB,
	"x-t200":  RGGB,
}

func fujifilmSupportsModel(model string) bool {
	_, found := fujifilmCFA[model]
	return found
}

// fujifilmDecoder handles RAF files, read through the EXIF tree of the
// embedded JPEG that follows the RAF header.
type fujifilmDecoder struct {
	baseDecoder
}

func newFujifilmDecoder(base baseDecoder) internalDecoder {
	return &fujifilmDecoder{baseDecoder: base}
}

func (d *fujifilmDecoder) CFAPattern() (CFAPattern, error) {
	p, found := fujifilmCFA[d.model]
	if !found {
		return 0, d.decodingError(&UnsupportedModelError{Maker: d.maker, Model: d.model})
	}
	return p, nil
}

func (d *fujifilmDecoder) DecodeWithPreprocess(b []byte) ([]uint16, error) {
	return nil, d.decodingError(newNotImplementedErrorf("RAF sensor data (model %q)", d.model))
}
