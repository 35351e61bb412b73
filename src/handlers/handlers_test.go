package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/handlers"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/parsers/amazon"
	"github.com/username/sellerledger/backend/src/processors"
	"github.com/username/sellerledger/backend/src/security"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/testutil"
)

const testSecret = "test-secret-that-is-at-least-thirty-two-bytes"

type server struct {
	handler http.Handler
	token   string
}

func newServer(t *testing.T) server {
	t.Helper()
	return newServerWithLimit(t, 1<<20)
}

func newServerWithLimit(t *testing.T, maxUploadBytes int64) server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	txStore := database.NewTransactionStore(db)
	productStore := database.NewProductStore(db)
	reportCache := services.NewReportCache(time.Minute)
	uploadService := services.NewUploadService(
		parsers.NewFactory(amazon.DefaultPreambleLines),
		processors.NewTransactionProcessor(),
		processors.NewDeduplicator(),
		txStore, database.NewImportStore(db), productStore, reportCache,
	)
	summaryService := services.NewSummaryService(txStore, productStore, processors.DefaultPriceTable{"A": 100}, reportCache)

	auth := security.NewAuthService(testSecret)
	token, err := auth.GenerateToken(1, time.Hour)
	testutil.AssertNoError(t, err)

	return server{
		handler: handlers.NewRouter(handlers.RouterConfig{
			AuthService:    auth,
			UploadService:  uploadService,
			SummaryService: summaryService,
			MaxUploadBytes: maxUploadBytes,
		}),
		token: token,
	}
}

func (s server) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	testutil.AssertNoError(t, err)
	_, err = part.Write(content)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestUploadAndSummary(t *testing.T) {
	s := newServer(t)
	csv := testutil.AmazonCSV(testutil.AmazonRow{Date: "2024-04-01", Type: "Order", OrderID: "1", SKU: "A", Quantity: "2", Total: "500"})

	rec := s.do(t, multipartUpload(t, "payments.csv", "text/csv", csv))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result services.UploadResult
	decode(t, rec, &result)
	if result.RowsInserted != 1 || result.Platform != models.PlatformAmazon {
		t.Errorf("unexpected upload result %+v", result)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}
	var summary models.TransactionSummary
	decode(t, rec, &summary)
	testutil.AssertMoney(t, "totalSales", summary.TotalSales, 500)
	testutil.AssertMoney(t, "totalProfit", summary.TotalProfit, 300)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("If-None-Match", etag)
	rec = s.do(t, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304 for matching ETag, got %d", rec.Code)
	}
}

func TestUploadErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		code   string
	}{
		{"unsupported content", multipartUpload(t, "scan.pdf", "", []byte("%PDF-1.7 binary")), http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"},
		{"disallowed content type", multipartUpload(t, "scan.pdf", "application/pdf", []byte("a,b")), http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"},
		{"missing sheet", multipartUpload(t, "s.xlsx", "", testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{})), http.StatusUnprocessableEntity, "REQUIRED_SHEET_MISSING"},
		{"empty file", multipartUpload(t, "empty.csv", "text/csv", nil), http.StatusBadRequest, "NO_FILE_SELECTED"},
		{"no multipart body", httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("x")), http.StatusBadRequest, "NO_FILE_SELECTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["code"] != tt.code {
				t.Errorf("expected code %s, got %v", tt.code, body)
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := newServerWithLimit(t, 512)
	big := testutil.AmazonCSV(testutil.AmazonRow{Type: "Order", OrderID: "1", SKU: "A", Description: strings.Repeat("x", 2048), Total: "1"})

	rec := s.do(t, multipartUpload(t, "payments.csv", "text/csv", big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decode(t, rec, &body)
	if !strings.Contains(body["error"], "max 512 bytes") {
		t.Errorf("expected the limit in bytes, got %q", body["error"])
	}
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	for _, header := range []string{"", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		rec := httptest.NewRecorder()
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		s.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}

	other := security.NewAuthService("another-secret-that-is-also-thirty-two-bytes")
	forged, err := other.GenerateToken(1, time.Hour)
	testutil.AssertNoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	if rec := s.do(t, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a token signed with another key, got %d", rec.Code)
	}
}

func TestImportsAndTransactions(t *testing.T) {
	s := newServer(t)
	csv := testutil.AmazonCSV(
		testutil.AmazonRow{Date: "2024-04-01", Type: "Order", OrderID: "1", SKU: "A", Description: "=HYPERLINK(\"x\")", Quantity: "1", Total: "500"},
		testutil.AmazonRow{Date: "2024-04-02", Type: "Refund", OrderID: "1", SKU: "A", Quantity: "1", Total: "-500"},
	)
	rec := s.do(t, multipartUpload(t, "payments.csv", "", csv))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	var txs []models.Transaction
	decode(t, rec, &txs)
	if len(txs) != 2 || txs[0].Product.CostPrice != 100 {
		t.Fatalf("expected 2 enriched transactions, got %+v", txs)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/transactions?format=csv", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected CSV export, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `'=HYPERLINK`) {
		t.Errorf("expected formula-leading cells to be neutralised, got %s", rec.Body.String())
	}

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	var imports []models.ImportRecord
	decode(t, rec, &imports)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/imports/"+imports[0].ID, nil))
	var one models.ImportRecord
	decode(t, rec, &one)
	if one.ID != imports[0].ID || one.RowsInserted != 2 || one.Filename != "payments.csv" {
		t.Errorf("unexpected import record %+v", one)
	}
	if rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/imports/unknown", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown import, got %d", rec.Code)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/imports/"+imports[0].ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("rollback failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/imports/"+imports[0].ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a rolled back import, got %d", rec.Code)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/transactions/all", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPriceEndpoints(t *testing.T) {
	s := newServer(t)

	put := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return s.do(t, req)
	}

	if rec := put("/api/products/A/cost-price", `{"cost_price": 42.5}`); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := put("/api/products/A/cost-price", `{"cost_price": -1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", rec.Code)
	}
	if rec := put("/api/products/A/cost-price", `not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", rec.Code)
	}
	if rec := put("/api/products/A/category", `{"category_id": "mugs"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown category, got %d", rec.Code)
	}
	if rec := put("/api/categories/mugs/cost-price", `{"name": "Mugs", "cost_price": 30}`); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := put("/api/products/A/category", `{"category_id": "mugs"}`); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("cors_allows_configured_origin", func(t *testing.T) {
		h := handlers.CORSMiddleware([]string{"http://localhost:3000"})(ok)

		req := httptest.NewRequest(http.MethodOptions, "/api/summary", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" || rec.Code != http.StatusOK {
			t.Errorf("expected preflight allowed, got %d %v", rec.Code, rec.Header())
		}

		req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("unknown origins must not be allowed")
		}
	})

	t.Run("rate_limit", func(t *testing.T) {
		h := handlers.RateLimitMiddleware(rate.NewLimiter(rate.Every(time.Hour), 1))(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected first request through, got %d", rec.Code)
		}
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", rec.Code)
		}
	})
}
