package parsers

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers/amazon"
	"github.com/username/sellerledger/backend/src/parsers/flipkart"
	"github.com/username/sellerledger/backend/src/security/validation"
)

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// Selection is the outcome of format detection.
type Selection struct {
	Platform models.Platform
	Parser   Parser
}

// Parse runs the selected parser over the upload content.
func (s Selection) Parse(upload *Upload) (*models.ParseResult, error) {
	return s.Parser.Parse(bytes.NewReader(upload.Content))
}

// Factory owns one configured parser per marketplace.
type Factory struct {
	amazon   Parser
	flipkart Parser
}

func NewFactory(amazonPreambleLines int) *Factory {
	return &Factory{
		amazon:   amazon.NewParser(amazon.WithPreambleLines(amazonPreambleLines)),
		flipkart: flipkart.NewParser(),
	}
}

// GetParser selects a parser by explicit platform name.
func (f *Factory) GetParser(source string) (Parser, error) {
	switch models.Platform(strings.ToLower(strings.TrimSpace(source))) {
	case models.PlatformAmazon:
		return f.amazon, nil
	case models.PlatformFlipkart:
		return f.flipkart, nil
	default:
		return nil, apperrors.WithMessage(apperrors.ErrUnsupportedFileType, fmt.Sprintf("no parser available for source: %s", source))
	}
}

// Detect inspects the file and picks its parser. Workbooks (by extension or
// zip signature) go to Flipkart and text files to Amazon. Legacy .xls
// workbooks and anything else are rejected instead of being read as an
// Amazon CSV.
func (f *Factory) Detect(upload *Upload) (Selection, error) {
	if upload == nil || len(upload.Content) == 0 {
		return Selection{}, apperrors.ErrNoFileSelected
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	kind := validation.SniffFileKind(upload.Content)

	// excelize reads OOXML only; a BIFF workbook is rejected whatever its name.
	legacy := kind == validation.KindLegacySpreadsheet ||
		(ext == ".xls" && kind != validation.KindSpreadsheet)

	var sel Selection
	switch {
	case legacy:
		logger.L.Warn("Legacy workbook rejected", "filename", upload.Filename)
		return Selection{}, apperrors.WithMessage(apperrors.ErrUnsupportedFileType,
			fmt.Sprintf("Legacy .xls workbooks are not supported, save %s as .xlsx", displayName(upload.Filename)))
	case spreadsheetExtensions[ext] || kind == validation.KindSpreadsheet:
		sel = Selection{Platform: models.PlatformFlipkart, Parser: f.flipkart}
	case kind == validation.KindText:
		sel = Selection{Platform: models.PlatformAmazon, Parser: f.amazon}
	default:
		logger.L.Warn("Format detection failed", "filename", upload.Filename, "extension", ext)
		return Selection{}, apperrors.WithMessage(apperrors.ErrUnsupportedFileType,
			fmt.Sprintf("Unsupported file type: %s", displayName(upload.Filename)))
	}

	logger.L.Debug("Format detected", "filename", upload.Filename, "platform", sel.Platform)
	return sel, nil
}

// Select honours an explicit Upload.Source and falls back to Detect.
func (f *Factory) Select(upload *Upload) (Selection, error) {
	if upload == nil || strings.TrimSpace(upload.Source) == "" {
		return f.Detect(upload)
	}
	if len(upload.Content) == 0 {
		return Selection{}, apperrors.ErrNoFileSelected
	}
	p, err := f.GetParser(upload.Source)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Platform: p.Platform(), Parser: p}, nil
}

// ReadUpload drains r into an Upload. A nil reader means no file was chosen.
func ReadUpload(filename string, r io.Reader) (*Upload, error) {
	if r == nil {
		return nil, apperrors.ErrNoFileSelected
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableFile, err)
	}
	return &Upload{Filename: filename, Content: content}, nil
}

func displayName(filename string) string {
	if filename == "" {
		return "(unnamed)"
	}
	return filepath.Base(filename)
}
