package amazon

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/utils"
)

// DefaultPreambleLines is the number of physical lines Amazon's payment
// report puts before the header row. It changes whenever Amazon reworks the
// export, so it can be overridden with WithPreambleLines.
const DefaultPreambleLines = 11

// Canonical field -> accepted source header keys, in lookup order.
var fieldKeys = map[string][]string{
	"sku":                    {"sku", "Sku", "SKU"},
	"type":                   {"type", "Type"},
	"order id":               {"order id", "Order Id", "Order ID"},
	"date/time":              {"date/time", "Date/Time"},
	"quantity":               {"quantity", "Quantity"},
	"description":            {"description", "Description"},
	"product sales":          {"product sales"},
	"selling fees":           {"selling fees"},
	"fba fees":               {"fba fees"},
	"other transaction fees": {"other transaction fees"},
	"total":                  {"total", "Total"},
}

var acceptedTypes = map[string]bool{
	"order":   true,
	"shipped": true,
	"refund":  true,
}

// Row is one CSV record keyed by its trimmed header.
type Row map[string]string

// Get returns the value of the first accepted source key present for field.
func (r Row) Get(field string) string {
	keys, ok := fieldKeys[field]
	if !ok {
		keys = []string{field}
	}
	for _, k := range keys {
		if v, ok := r[k]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type AmazonParser struct {
	preambleLines int
}

type Option func(*AmazonParser)

// WithPreambleLines overrides DefaultPreambleLines.
func WithPreambleLines(n int) Option {
	return func(p *AmazonParser) {
		if n >= 0 {
			p.preambleLines = n
		}
	}
}

func NewParser(opts ...Option) *AmazonParser {
	p := &AmazonParser{preambleLines: DefaultPreambleLines}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *AmazonParser) Platform() models.Platform { return models.PlatformAmazon }

// Parse reads a payment report. Failing to read the stream or its header
// aborts the import; individual bad rows are skipped.
func (p *AmazonParser) Parse(file io.Reader) (*models.ParseResult, error) {
	rows, skipped, err := p.ReadRows(file)
	if err != nil {
		return nil, err
	}

	result := &models.ParseResult{Platform: models.PlatformAmazon, SkippedRows: skipped}
	for _, row := range rows {
		tx, ok := MapRow(row)
		if !ok {
			result.SkippedRows++
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// ReadRows skips the preamble and returns header-keyed rows. The second
// return value counts records the CSV reader could not use.
func (p *AmazonParser) ReadRows(file io.Reader) ([]Row, int, error) {
	br := bufio.NewReader(file)
	for i := 0; i < p.preambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, apperrors.WithMessage(apperrors.ErrUnreadableFile,
					fmt.Sprintf("amazon parser: file ended after %d of %d preamble lines", i, p.preambleLines))
			}
			return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("amazon parser: failed to read preamble: %w", err))
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("amazon parser: failed to read CSV header: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []Row
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.L.Debug("Amazon parser: skipping unparsable record", "line", parseErr.Line, "error", err)
				skipped++
				continue
			}
			return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("amazon parser: failed to read CSV records: %w", err))
		}
		if len(record) < len(header) {
			logger.L.Debug("Amazon parser: skipping short record", "fields", len(record), "expected", len(header))
			skipped++
			continue
		}
		row := make(Row, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// MapRow converts a raw row into a canonical transaction. It reports false
// for rows without a SKU or with a type outside order/shipped/refund.
func MapRow(row Row) (models.Transaction, bool) {
	sku := row.Get("sku")
	txType := strings.ToLower(row.Get("type"))
	if sku == "" || txType == "" || !acceptedTypes[txType] {
		return models.Transaction{}, false
	}

	description := validation.CleanCell(row.Get("description"))
	otherFees := math.Abs(utils.ParseCurrency(row.Get("fba fees"))) +
		math.Abs(utils.ParseCurrency(row.Get("other transaction fees")))

	return models.Transaction{
		TransactionID: row.Get("order id"),
		Platform:      models.PlatformAmazon,
		OrderDate:     utils.NormalizeReportDate(row.Get("date/time")),
		SKU:           sku,
		Description:   description,
		Quantity:      parseQuantity(row.Get("quantity")),
		SellingPrice:  utils.ParseCurrency(row.Get("product sales")),
		Total:         utils.ParseCurrency(row.Get("total")),
		Type:          txType,
		OrderStatus:   txType,
		Expenses: models.Expenses{
			MarketplaceFee: math.Abs(utils.ParseCurrency(row.Get("selling fees"))),
			OtherFees:      otherFees,
		},
		Product: models.ProductRef{SKU: sku, Description: description},
	}, true
}

func parseQuantity(raw string) int {
	return utils.AbsInt(int(math.Round(utils.ParseCurrency(raw))))
}
