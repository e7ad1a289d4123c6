// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package rawmeta identifies camera raw files (CR2, CR3, NEF, ARW, RAF, DNG),
// reads the metadata needed to decode them and extracts the embedded preview JPEG.
package rawmeta

import (
	"fmt"
	"os"
)

// CFAPattern is the color filter array layout of the sensor.
type CFAPattern int

const (
	RGGB CFAPattern = iota
	GRBG
	GBRG
	BGGR
	// XTrans0 is the 6x6 X-Trans layout starting with the row RBGBRG.
	XTrans0
	// XTrans1 is the 6x6 X-Trans layout starting with the row GGRGGB.
	XTrans1
)

func (p CFAPattern) String() string {
	switch p {
	case RGGB:
		return "RGGB"
	case GRBG:
		return "GRBG"
	case GBRG:
		return "GBRG"
	case BGGR:
		return "BGGR"
	case XTrans0:
		return "XTrans0"
	case XTrans1:
		return "XTrans1"
	default:
		return fmt.Sprintf("CFAPattern(%d)", int(p))
	}
}

// Orientation is the clockwise rotation needed to display the image upright.
type Orientation int

const (
	Horizontal Orientation = 0
	Rotate90   Orientation = 90
	Rotate180  Orientation = 180
	Rotate270  Orientation = 270
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "Horizontal"
	case Rotate90:
		return "Rotate90"
	case Rotate180:
		return "Rotate180"
	case Rotate270:
		return "Rotate270"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// orientationFromEXIF maps the EXIF Orientation tag value. Mirrored values
// are not supported and map to Horizontal.
func orientationFromEXIF(v int) Orientation {
	switch v {
	case 3:
		return Rotate180
	case 6:
		return Rotate90
	case 8:
		return Rotate270
	default:
		return Horizontal
	}
}

// Crop is the active area of the sensor, in sensor coordinates.
type Crop struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// WhiteBalanceUnit is the white balance gain representing 1.0.
const WhiteBalanceUnit = 1024

// DecodedImage is a decoded, not yet demosaiced, sensor plane.
type DecodedImage struct {
	CFAPattern  CFAPattern
	Width       int
	Height      int
	Crop        *Crop // nil if the format declares no crop.
	Orientation Orientation

	// Image holds Width*Height samples, row-major.
	Image []uint16

	// WhiteBalance holds the R, G, B gains in units of WhiteBalanceUnit.
	WhiteBalance [3]int32

	// CamMatrix is the row-major 3x3 camera to reference color space matrix.
	CamMatrix [9]float32

	// Info is the metadata the image was decoded from.
	Info *ParsedInfo
}

// Thumbnail is an embedded preview JPEG.
type Thumbnail struct {
	// Data is the JPEG stream.
	// When returned from ExtractThumbnail it is a sub slice of the input buffer.
	Data []byte

	Orientation Orientation
}

// Options contains the options shared by all entry points.
// The zero value is ready to use.
type Options struct {
	// Warnf will be called for each fallback the decoder takes.
	Warnf func(string, ...any)

	// LimitNumTags is the maximum number of tags read while parsing
	// one metadata tree. The default value is 5000.
	LimitNumTags uint32
}

func (opts Options) withDefaults() Options {
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	if opts.LimitNumTags == 0 {
		opts.LimitNumTags = defaultLimitNumTags
	}
	return opts
}

// DecodeBuffer decodes the sensor data in the raw file in b.
func DecodeBuffer(b []byte, opts Options) (img *DecodedImage, err error) {
	defer func() {
		if errr := errFromRecover(recover()); errr != nil {
			img, err = nil, errr
		}
	}()

	return selectAndDecode(prepareBuffer(b), opts.withDefaults())
}

// DecodeFile decodes the sensor data in the raw file filename.
func DecodeFile(filename string, opts Options) (*DecodedImage, error) {
	b, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeBuffer(b, opts)
}

// DecodeInfo reads the metadata of the raw file in b without decoding
// the sensor data.
func DecodeInfo(b []byte, opts Options) (info *ParsedInfo, err error) {
	defer func() {
		if errr := errFromRecover(recover()); errr != nil {
			info, err = nil, errr
		}
	}()

	return selectAndDecodeInfo(prepareBuffer(b), opts.withDefaults())
}

// DecodeInfoFile reads the metadata of the raw file filename.
func DecodeInfoFile(filename string, opts Options) (*ParsedInfo, error) {
	b, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeInfo(b, opts)
}

// ExtractThumbnail returns the embedded preview JPEG of the raw file in b.
// The returned Data shares memory with b.
func ExtractThumbnail(b []byte, opts Options) (thumb Thumbnail, err error) {
	defer func() {
		if errr := errFromRecover(recover()); errr != nil {
			thumb, err = Thumbnail{}, errr
		}
	}()

	return resolveThumbnail(b, opts.withDefaults())
}

// ThumbnailFile returns the embedded preview JPEG of the raw file filename.
func ThumbnailFile(filename string, opts Options) (Thumbnail, error) {
	b, err := readFile(filename)
	if err != nil {
		return Thumbnail{}, err
	}
	return ExtractThumbnail(b, opts)
}

// WriteThumbnailFile writes the embedded preview JPEG of rawFilename to outFilename.
func WriteThumbnailFile(rawFilename, outFilename string, opts Options) error {
	thumb, err := ThumbnailFile(rawFilename, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFilename, thumb.Data, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return nil
}

func errFromRecover(r any) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return newInvalidFormatErrorf("unknown panic: %v", r)
}
