package parsers_test

import (
	"testing"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/parsers/amazon"
	"github.com/username/sellerledger/backend/src/parsers/flipkart"
	"github.com/username/sellerledger/backend/src/testutil"
)

func TestDetect(t *testing.T) {
	factory := parsers.NewFactory(amazon.DefaultPreambleLines)
	workbook := testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{
		OrdersSheet: flipkart.OrdersSheetName,
		Orders:      []testutil.FlipkartOrder{{OrderID: "OD1", SKU: "A", Units: "1", Status: "Delivered"}},
	})

	tests := []struct {
		name     string
		upload   *parsers.Upload
		platform models.Platform
		wantErr  *apperrors.AppError
	}{
		{"nil upload", nil, "", apperrors.ErrNoFileSelected},
		{"empty content", &parsers.Upload{Filename: "a.csv"}, "", apperrors.ErrNoFileSelected},
		{"xlsx workbook", &parsers.Upload{Filename: "settlement.xlsx", Content: workbook}, models.PlatformFlipkart, nil},
		{"workbook without extension", &parsers.Upload{Filename: "download", Content: workbook}, models.PlatformFlipkart, nil},
		{"xlsm extension", &parsers.Upload{Filename: "macro.XLSM", Content: workbook}, models.PlatformFlipkart, nil},
		{"legacy xls extension", &parsers.Upload{Filename: "legacy.XLS", Content: []byte("whatever")}, "", apperrors.ErrUnsupportedFileType},
		{"renamed legacy workbook", &parsers.Upload{Filename: "old.xlsx", Content: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}}, "", apperrors.ErrUnsupportedFileType},
		{"xlsx saved with xls name", &parsers.Upload{Filename: "report.xls", Content: workbook}, models.PlatformFlipkart, nil},
		{"legacy xls content", &parsers.Upload{Filename: "download", Content: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}}, "", apperrors.ErrUnsupportedFileType},
		{"csv text", &parsers.Upload{Filename: "payments.csv", Content: testutil.AmazonCSV()}, models.PlatformAmazon, nil},
		{"text with other extension", &parsers.Upload{Filename: "payments.txt", Content: []byte("a,b\n1,2\n")}, models.PlatformAmazon, nil},
		{"pdf", &parsers.Upload{Filename: "invoice.pdf", Content: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")}, "", apperrors.ErrUnsupportedFileType},
		{"binary", &parsers.Upload{Filename: "blob.bin", Content: []byte{0x00, 0x01, 0x02, 0xff, 0xfe}}, "", apperrors.ErrUnsupportedFileType},
		{"png", &parsers.Upload{Filename: "photo.csv", Content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")}, "", apperrors.ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := factory.Detect(tt.upload)
			if tt.wantErr != nil {
				testutil.AssertAppError(t, err, tt.wantErr)
				return
			}
			testutil.AssertNoError(t, err)
			if sel.Platform != tt.platform {
				t.Errorf("expected platform %s, got %s", tt.platform, sel.Platform)
			}
			if sel.Parser.Platform() != tt.platform {
				t.Errorf("selected parser reports %s, expected %s", sel.Parser.Platform(), tt.platform)
			}
		})
	}
}

func TestSelectionParse(t *testing.T) {
	factory := parsers.NewFactory(amazon.DefaultPreambleLines)
	upload := &parsers.Upload{
		Filename: "payments.csv",
		Content:  testutil.AmazonCSV(testutil.AmazonRow{Type: "Order", OrderID: "1", SKU: "A", Quantity: "1", Total: "100"}),
	}

	sel, err := factory.Detect(upload)
	testutil.AssertNoError(t, err)
	result, err := sel.Parse(upload)
	testutil.AssertNoError(t, err)
	if len(result.Transactions) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(result.Transactions))
	}
}

func TestGetParser(t *testing.T) {
	factory := parsers.NewFactory(amazon.DefaultPreambleLines)

	p, err := factory.GetParser(" Flipkart ")
	testutil.AssertNoError(t, err)
	if p.Platform() != models.PlatformFlipkart {
		t.Errorf("expected flipkart parser, got %s", p.Platform())
	}

	_, err = factory.GetParser("meesho")
	testutil.AssertAppError(t, err, apperrors.ErrUnsupportedFileType)
}

func TestReadUpload(t *testing.T) {
	_, err := parsers.ReadUpload("a.csv", nil)
	testutil.AssertAppError(t, err, apperrors.ErrNoFileSelected)
}

func TestSelect(t *testing.T) {
	factory := parsers.NewFactory(amazon.DefaultPreambleLines)
	csv := testutil.AmazonCSV()

	sel, err := factory.Select(&parsers.Upload{Filename: "report.bin", Content: csv, Source: "amazon"})
	testutil.AssertNoError(t, err)
	if sel.Platform != models.PlatformAmazon {
		t.Errorf("expected explicit source to win, got %s", sel.Platform)
	}

	sel, err = factory.Select(&parsers.Upload{Filename: "payments.csv", Content: csv})
	testutil.AssertNoError(t, err)
	if sel.Platform != models.PlatformAmazon {
		t.Errorf("expected detection without a source, got %s", sel.Platform)
	}

	_, err = factory.Select(&parsers.Upload{Filename: "payments.csv", Content: csv, Source: "meesho"})
	testutil.AssertAppError(t, err, apperrors.ErrUnsupportedFileType)

	_, err = factory.Select(&parsers.Upload{Filename: "payments.csv", Source: "amazon"})
	testutil.AssertAppError(t, err, apperrors.ErrNoFileSelected)
}
