// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import "fmt"

// makerEntry ties a maker to its rules and decoder.
type makerEntry struct {
	name          string
	imageRule     *Rule
	thumbnailRule *Rule
	newDecoder    func(base baseDecoder) internalDecoder

	// supportsModel reports whether a normalized model is supported.
	// If nil, all models are.
	supportsModel func(model string) bool
}

var (
	canonEntry = &makerEntry{
		name:          "Canon",
		imageRule:     canonImageRule,
		thumbnailRule: canonThumbnailRule,
		newDecoder:    newCanonDecoder,
	}
	nikonEntry = &makerEntry{
		name:          "Nikon",
		imageRule:     nikonImageRule,
		thumbnailRule: nikonThumbnailRule,
		newDecoder:    newNikonDecoder,
	}
	sonyEntry = &makerEntry{
		name:          "Sony",
		imageRule:     sonyImageRule,
		thumbnailRule: sonyThumbnailRule,
		newDecoder:    newSonyDecoder,
	}
	fujifilmEntry = &makerEntry{
		name:          "Fujifilm",
		imageRule:     fujifilmImageRule,
		thumbnailRule: fujifilmThumbnailRule,
		newDecoder:    newFujifilmDecoder,
		supportsModel: fujifilmSupportsModel,
	}
	dngEntry = &makerEntry{
		name:          "DNG",
		imageRule:     dngImageRule,
		thumbnailRule: dngThumbnailRule,
		newDecoder:    newDNGDecoder,
	}
)

// makers is keyed by the normalized Make tag.
var makers = map[string]*makerEntry{
	"canon":             canonEntry,
	"nikon corporation": nikonEntry,
	"nikon":             nikonEntry,
	"sony":              sonyEntry,
	"fujifilm":          fujifilmEntry,
}

type selection struct {
	entry *makerEntry
	maker string
	model string
}

// selectMaker picks the decoder family for the dispatch fields in info.
func selectMaker(info *ParsedInfo) (selection, error) {
	mk, err := info.Str(fieldMake)
	if err != nil {
		return selection{}, fmt.Errorf("%w: %w", ErrCannotReadMake, err)
	}
	md, err := info.Str(fieldModel)
	if err != nil {
		return selection{}, fmt.Errorf("%w: %w", ErrCannotReadModel, err)
	}

	sel := selection{
		maker: normalizeIdentifier(mk),
		model: normalizeIdentifier(md),
	}

	if info.Has(fieldDNGVersion) {
		sel.entry = dngEntry
		return sel, nil
	}

	entry, found := makers[sel.maker]
	if !found {
		return selection{}, &UnsupportedMakerError{Maker: sel.maker}
	}
	if entry.supportsModel != nil && !entry.supportsModel(sel.model) {
		return selection{}, &UnsupportedModelError{Maker: entry.name, Model: sel.model}
	}
	sel.entry = entry

	return sel, nil
}

// newDecoder parses b with the rule returned by ruleOf and
// constructs the selected decoder.
func (s selection) newDecoder(b []byte, ruleOf func(*makerEntry) *Rule, opts Options) (internalDecoder, error) {
	info, err := sniff(b, ruleOf(s.entry), opts)
	if err != nil {
		return nil, err
	}
	return s.decoderFor(info, opts), nil
}

func (s selection) decoderFor(info *ParsedInfo, opts Options) internalDecoder {
	return s.entry.newDecoder(baseDecoder{
		maker: s.entry.name,
		model: s.model,
		info:  info,
		opts:  opts,
	})
}

func imageRuleOf(e *makerEntry) *Rule     { return e.imageRule }
func thumbnailRuleOf(e *makerEntry) *Rule { return e.thumbnailRule }

// selectDecoder sniffs b and returns the decoder for it together with the
// buffer its offsets are relative to.
func selectDecoder(b []byte, ruleOf func(*makerEntry) *Rule, opts Options) (internalDecoder, []byte, error) {
	dispatch, effective, err := sniffWithFallback(b, dispatchRule, opts)
	if err != nil {
		return nil, nil, err
	}
	sel, err := selectMaker(dispatch)
	if err != nil {
		return nil, nil, err
	}
	dec, err := sel.newDecoder(effective, ruleOf, opts)
	if err != nil {
		return nil, nil, err
	}
	return dec, effective, nil
}

func selectAndDecode(b []byte, opts Options) (*DecodedImage, error) {
	dec, effective, err := selectDecoder(b, imageRuleOf, opts)
	if err != nil {
		return nil, err
	}
	cfa, err := dec.CFAPattern()
	if err != nil {
		return nil, err
	}
	width, height, err := dec.size()
	if err != nil {
		return nil, err
	}
	img, err := dec.DecodeWithPreprocess(effective)
	if err != nil {
		return nil, err
	}
	if len(img) != width*height {
		return nil, dec.decodingError(newInvalidFormatErrorf("decoded %d samples, want %dx%d", len(img), width, height))
	}

	wb, camMatrix := colorOf(dec)

	return &DecodedImage{
		CFAPattern:   cfa,
		Width:        width,
		Height:       height,
		Crop:         dec.Crop(),
		Orientation:  dec.orientation(),
		Image:        img,
		WhiteBalance: wb,
		CamMatrix:    camMatrix,
		Info:         dec.Info(),
	}, nil
}

func selectAndDecodeInfo(b []byte, opts Options) (*ParsedInfo, error) {
	dec, _, err := selectDecoder(b, imageRuleOf, opts)
	if err != nil {
		return nil, err
	}
	return dec.Info(), nil
}

// selectAndDecodeThumbnail returns the preview JPEG for the already
// sniffed dispatch info. b is the effective buffer of the sniff.
// If the thumbnail rule cannot be parsed, the decoder is built from the
// dispatch info, which declares no thumbnail, and the JPEG scans run.
func selectAndDecodeThumbnail(dispatch *ParsedInfo, b []byte, opts Options) ([]byte, Orientation, error) {
	sel, err := selectMaker(dispatch)
	if err != nil {
		return nil, Horizontal, err
	}
	dec, err := sel.newDecoder(b, thumbnailRuleOf, opts)
	if err != nil {
		opts.Warnf("%s: %s, scanning for a JPEG", sel.entry.name, err)
		dec = sel.decoderFor(dispatch, opts)
	}
	jpg, err := dec.Thumbnail(b)
	if err != nil {
		return nil, Horizontal, err
	}
	return jpg, dec.orientation(), nil
}
