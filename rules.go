// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

const (
	tagNewSubfileType      = 0x00fe
	tagImageWidth          = 0x0100
	tagImageLength         = 0x0101
	tagBitsPerSample       = 0x0102
	tagCompression         = 0x0103
	tagMake                = 0x010f
	tagModel               = 0x0110
	tagStripOffsets        = 0x0111
	tagOrientation         = 0x0112
	tagRowsPerStrip        = 0x0116
	tagStripByteCounts     = 0x0117
	tagTileOffsets         = 0x0144
	tagSubIFDs             = 0x014a
	tagJPEGOffset          = 0x0201
	tagJPEGLength          = 0x0202
	tagCFARepeatPatternDim = 0x828d
	tagCFAPattern          = 0x828e
	tagExifIFDPointer      = 0x8769
	tagSonyCropTopLeft     = 0x74c7
	tagSonyCropSize        = 0x74c8
	tagExifImageWidth      = 0xa002
	tagExifImageHeight     = 0xa003
	tagDNGVersion          = 0xc612
	tagColorMatrix1        = 0xc621
	tagDefaultCropOrigin   = 0xc61f
	tagDefaultCropSize     = 0xc620
	tagAsShotNeutral       = 0xc628
)

// Logical field names shared by all rules.
const (
	fieldMake            = "make"
	fieldModel           = "model"
	fieldDNGVersion      = "dng_version"
	fieldOrientation     = "orientation"
	fieldThumbnail       = "thumbnail"
	fieldThumbnailLen    = "thumbnail_len"
	fieldWidth           = "width"
	fieldHeight          = "height"
	fieldBitsPerSample   = "bps"
	fieldCompression     = "compression"
	fieldStripOffsets    = "strip_offsets"
	fieldStripByteCounts = "strip_byte_counts"
	fieldRowsPerStrip    = "rows_per_strip"
	fieldTileOffsets     = "tile_offsets"
	fieldSubfileType     = "subfile_type"
	fieldCFAPattern      = "cfa_pattern"
	fieldCFADim          = "cfa_dim"
	fieldCropOrigin      = "crop_origin"
	fieldCropSize        = "crop_size"
	fieldAsShotNeutral   = "as_shot_neutral"
	fieldColorMatrix     = "color_matrix"

	// Prefix used for IFD0 copies of raw IFD fields in DNG, where the raw
	// image may live in IFD0 or in a SubIFD.
	fieldPrefixIFD0 = "ifd0_"
)

const (
	subfileTypeFullResolution = 0
	subfileTypeReduced        = 1
)

// dispatchRule reads the minimum needed to pick a decoder. It only reads
// IFD0, orientation included, so it still works when the thumbnail rule's
// IFD chain is broken.
var dispatchRule = &Rule{
	Name: "dispatch",
	IFD: IFDRule{
		Fields: map[uint16]string{
			tagMake:        fieldMake,
			tagModel:       fieldModel,
			tagDNGVersion:  fieldDNGVersion,
			tagOrientation: fieldOrientation,
		},
	},
}

// Fields of an uncompressed/strip based raw IFD.
var rawIFDFields = map[uint16]string{
	tagImageWidth:          fieldWidth,
	tagImageLength:         fieldHeight,
	tagBitsPerSample:       fieldBitsPerSample,
	tagCompression:         fieldCompression,
	tagStripOffsets:        fieldStripOffsets,
	tagStripByteCounts:     fieldStripByteCounts,
	tagRowsPerStrip:        fieldRowsPerStrip,
	tagTileOffsets:         fieldTileOffsets,
	tagCFARepeatPatternDim: fieldCFADim,
	tagCFAPattern:          fieldCFAPattern,
}

func withFields(m map[uint16]string, extra map[uint16]string) map[uint16]string {
	out := make(map[uint16]string, len(m)+len(extra))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func prefixed(prefix string, m map[uint16]string) map[uint16]string {
	out := make(map[uint16]string, len(m))
	for k, v := range m {
		out[k] = prefix + v
	}
	return out
}

var (
	fullResolution    = &TagMatch{Tag: tagNewSubfileType, Value: subfileTypeFullResolution}
	reducedResolution = &TagMatch{Tag: tagNewSubfileType, Value: subfileTypeReduced}
)

var (
	canonThumbnailRule = &Rule{
		Name: "canon/thumbnail",
		IFD: IFDRule{
			Fields: map[uint16]string{tagOrientation: fieldOrientation},
			Next: &IFDRule{
				Fields: map[uint16]string{
					tagJPEGOffset: fieldThumbnail,
					tagJPEGLength: fieldThumbnailLen,
				},
			},
		},
	}

	canonImageRule = &Rule{
		Name: "canon/image",
		IFD: IFDRule{
			Fields: map[uint16]string{
				tagMake:        fieldMake,
				tagModel:       fieldModel,
				tagOrientation: fieldOrientation,
			},
			Sub: map[uint16]*IFDRule{
				tagExifIFDPointer: {
					Fields: map[uint16]string{
						tagExifImageWidth:  fieldWidth,
						tagExifImageHeight: fieldHeight,
					},
				},
			},
			Next: &IFDRule{
				Fields: map[uint16]string{
					tagJPEGOffset: fieldThumbnail,
					tagJPEGLength: fieldThumbnailLen,
				},
			},
		},
	}
)

var (
	nikonThumbnailRule = &Rule{
		Name: "nikon/thumbnail",
		IFD: IFDRule{
			Fields: map[uint16]string{tagOrientation: fieldOrientation},
			Sub: map[uint16]*IFDRule{
				tagSubIFDs: {
					Select: reducedResolution,
					Fields: map[uint16]string{
						tagJPEGOffset: fieldThumbnail,
						tagJPEGLength: fieldThumbnailLen,
					},
				},
			},
		},
	}

	nikonImageRule = &Rule{
		Name: "nikon/image",
		IFD: IFDRule{
			Fields: map[uint16]string{
				tagMake:        fieldMake,
				tagModel:       fieldModel,
				tagOrientation: fieldOrientation,
			},
			Sub: map[uint16]*IFDRule{
				tagSubIFDs: {
					Select: fullResolution,
					Fields: rawIFDFields,
				},
			},
		},
	}
)

var (
	sonyThumbnailRule = &Rule{
		Name: "sony/thumbnail",
		IFD: IFDRule{
			Fields: map[uint16]string{
				tagOrientation: fieldOrientation,
				tagJPEGOffset:  fieldThumbnail,
				tagJPEGLength:  fieldThumbnailLen,
			},
		},
	}

	sonyImageRule = &Rule{
		Name: "sony/image",
		IFD: IFDRule{
			Fields: map[uint16]string{
				tagMake:        fieldMake,
				tagModel:       fieldModel,
				tagOrientation: fieldOrientation,
			},
			Sub: map[uint16]*IFDRule{
				tagSubIFDs: {
					Select: fullResolution,
					Fields: withFields(rawIFDFields, map[uint16]string{
						tagSonyCropTopLeft: fieldCropOrigin,
						tagSonyCropSize:    fieldCropSize,
					}),
				},
			},
		},
	}
)

var (
	fujifilmThumbnailRule = &Rule{
		Name: "fujifilm/thumbnail",
		IFD: IFDRule{
			Fields: map[uint16]string{tagOrientation: fieldOrientation},
			Next: &IFDRule{
				Fields: map[uint16]string{
					tagJPEGOffset: fieldThumbnail,
					tagJPEGLength: fieldThumbnailLen,
				},
			},
		},
	}

	fujifilmImageRule = &Rule{
		Name: "fujifilm/image",
		IFD: IFDRule{
			Fields: map[uint16]string{
				tagMake:        fieldMake,
				tagModel:       fieldModel,
				tagOrientation: fieldOrientation,
			},
			Sub: map[uint16]*IFDRule{
				tagExifIFDPointer: {
					Fields: map[uint16]string{
						tagExifImageWidth:  fieldWidth,
						tagExifImageHeight: fieldHeight,
					},
				},
			},
		},
	}
)

var dngRawIFDFields = withFields(rawIFDFields, map[uint16]string{
	tagDefaultCropOrigin: fieldCropOrigin,
	tagDefaultCropSize:   fieldCropSize,
})

var (
	dngThumbnailRule = &Rule{
		Name: "dng/thumbnail",
		IFD: IFDRule{
			Fields: map[uint16]string{tagOrientation: fieldOrientation},
			Sub: map[uint16]*IFDRule{
				tagSubIFDs: {
					Select: reducedResolution,
					Fields: map[uint16]string{
						tagStripOffsets:    fieldThumbnail,
						tagStripByteCounts: fieldThumbnailLen,
					},
				},
			},
		},
	}

	dngImageRule = &Rule{
		Name: "dng/image",
		IFD: IFDRule{
			Fields: withFields(prefixed(fieldPrefixIFD0, dngRawIFDFields), map[uint16]string{
				tagNewSubfileType: fieldPrefixIFD0 + fieldSubfileType,
				tagMake:           fieldMake,
				tagModel:          fieldModel,
				tagOrientation:    fieldOrientation,
				tagDNGVersion:     fieldDNGVersion,
				tagColorMatrix1:   fieldColorMatrix,
				tagAsShotNeutral:  fieldAsShotNeutral,
			}),
			Sub: map[uint16]*IFDRule{
				tagSubIFDs: {
					Select: fullResolution,
					Fields: dngRawIFDFields,
				},
			},
		},
	}
)
