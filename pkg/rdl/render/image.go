package render

import (
	"strings"
	"unicode"
)

// DefaultImageMIMEType is used when an embedded image does not declare one
const DefaultImageMIMEType = "image/jpeg"

// DataURI builds a data URI from already base64 encoded image data. Report
// definitions wrap long ImageData values across lines, so whitespace is removed.
func DataURI(mimeType, base64Data string) string {
	if mimeType == "" {
		mimeType = DefaultImageMIMEType
	}
	data := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, base64Data)
	return "data:" + mimeType + ";base64," + data
}
