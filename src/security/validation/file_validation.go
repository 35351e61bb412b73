package validation

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/username/sellerledger/backend/src/logger"
)

// FileKind is the coarse content class used for format detection.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindText
	KindSpreadsheet
	// KindLegacySpreadsheet is a BIFF (OLE) .xls workbook.
	KindLegacySpreadsheet
)

var (
	zipSignature = []byte{'P', 'K', 0x03, 0x04}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/zip":     false,
	"application/pdf":     false,
	"application/msword":  false,
	"application/x-msdos": false,
}

// ValidateClientContentType checks the Content-Type header provided by the client.
// An empty header is accepted; the content is sniffed afterwards anyway.
func ValidateClientContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" {
		return nil
	}
	if allowed, exists := AllowedClientContentTypes[ct]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for report upload", contentType)
	}
	return nil
}

// SniffFileKind classifies the first bytes of a file.
func SniffFileKind(content []byte) FileKind {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.HasPrefix(head, zipSignature) {
		return KindSpreadsheet
	}
	if bytes.HasPrefix(head, oleSignature) {
		return KindLegacySpreadsheet
	}

	detected := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
	switch detected {
	case "text/plain", "text/csv", "application/csv":
		return KindText
	case "application/octet-stream":
		// DetectContentType gives up on some UTF-8 text with unusual leading
		// bytes; accept it only when it decodes cleanly and has no NULs.
		if looksLikeText(head) {
			return KindText
		}
	}
	logger.L.Debug("File content is neither text nor spreadsheet", "detectedContentType", detected)
	return KindUnknown
}

func looksLikeText(b []byte) bool {
	if bytes.IndexByte(b, 0) >= 0 {
		return false
	}
	// The sample may cut a multi-byte rune in half.
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	return len(b) > 0 && utf8.Valid(b)
}
