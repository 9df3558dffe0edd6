package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format is the detected kind of an uploaded source.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatTSV     Format = "tsv"
	FormatXLSB    Format = "xlsb"
	FormatUnknown Format = "unknown"
)

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

var extFormats = map[string]Format{
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".xltx": FormatXLSX,
	".xls":  FormatXLS,
	".xlsb": FormatXLSB,
	".tsv":  FormatTSV,
	".txt":  FormatTSV,
	".tab":  FormatTSV,
}

// Classify determines the source format from the filename and the first
// bytes of the content. Content signatures win over a misleading extension.
func Classify(filename string, head []byte) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	byExt, known := extFormats[ext]

	switch {
	case bytes.HasPrefix(head, cfbMagic):
		return FormatXLS
	case bytes.HasPrefix(head, zipMagic):
		if byExt == FormatXLSB {
			return FormatXLSB
		}
		return FormatXLSX
	}

	if known && byExt != FormatXLSX && byExt != FormatXLS {
		return byExt
	}
	if len(head) > 0 && bytes.IndexByte(head, '\t') >= 0 && !bytes.ContainsRune(head, 0) {
		return FormatTSV
	}
	return FormatUnknown
}
