package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/carteirapulse/internal/domain/models"
	"github.com/guttosm/carteirapulse/internal/importer"
)

type fakePortfolioService struct {
	importSummary models.ImportSummary
	importErr     error
	positions     []models.Position
	tradeYears    []models.TradeYearHeader
	tradeDetails  []models.TradeTickerSummary
	incomeYears   []models.ProventoYearHeader
	incomeDetails []models.ProventoTickerSummary
	overall       models.ProventoOverallSummary
	deleted       int64
	err           error

	lastUserID string
	lastYear   int
	lastTopN   int
}

func (f *fakePortfolioService) ImportStatement(_ context.Context, userID string, src io.Reader) (models.ImportSummary, error) {
	f.lastUserID = userID
	_, _ = io.ReadAll(src)
	return f.importSummary, f.importErr
}

func (f *fakePortfolioService) Positions(_ context.Context, userID string) ([]models.Position, error) {
	f.lastUserID = userID
	return f.positions, f.err
}

func (f *fakePortfolioService) TradesByYear(_ context.Context, userID string) ([]models.TradeYearHeader, error) {
	f.lastUserID = userID
	return f.tradeYears, f.err
}

func (f *fakePortfolioService) TradeYearDetails(_ context.Context, userID string, year int) ([]models.TradeTickerSummary, error) {
	f.lastUserID, f.lastYear = userID, year
	return f.tradeDetails, f.err
}

func (f *fakePortfolioService) ProventosByYear(_ context.Context, userID string) ([]models.ProventoYearHeader, error) {
	f.lastUserID = userID
	return f.incomeYears, f.err
}

func (f *fakePortfolioService) ProventosYearDetails(_ context.Context, userID string, year int) ([]models.ProventoTickerSummary, error) {
	f.lastUserID, f.lastYear = userID, year
	return f.incomeDetails, f.err
}

func (f *fakePortfolioService) ProventosOverall(_ context.Context, userID string, topN int) (models.ProventoOverallSummary, error) {
	f.lastUserID, f.lastTopN = userID, topN
	return f.overall, f.err
}

func (f *fakePortfolioService) DeleteOperations(_ context.Context, userID string) (int64, error) {
	f.lastUserID = userID
	return f.deleted, f.err
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/import", h.ImportStatement)
	v1.GET("/positions", h.GetPositions)
	v1.GET("/trades/years", h.GetTradeYears)
	v1.GET("/trades/years/:year", h.GetTradeYearDetails)
	v1.GET("/proventos/years", h.GetProventoYears)
	v1.GET("/proventos/years/:year", h.GetProventoYearDetails)
	v1.GET("/proventos/overall", h.GetProventosOverall)
	v1.DELETE("/operations", h.DeleteOperations)
	return r
}

func multipartUpload(t *testing.T, userID string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if userID != "" {
		if err := w.WriteField("user_id", userID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withFile {
		fw, err := w.CreateFormFile("file", "statement.xlsx")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("workbook bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestImportStatement_OK(t *testing.T) {
	svc := &fakePortfolioService{importSummary: models.ImportSummary{TotalRowsRead: 10, TotalImported: 7, TotalSkippedDuplicate: 3}}
	router := newTestRouter(NewHandler(svc))

	body, contentType := multipartUpload(t, "user-1", true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["total_imported"] != 7 || resp["total_skipped_duplicate"] != 3 {
		t.Fatalf("body = %v", resp)
	}
	if svc.lastUserID != "user-1" {
		t.Fatalf("user = %q", svc.lastUserID)
	}
}

func TestImportStatement_MissingUserID(t *testing.T) {
	router := newTestRouter(NewHandler(&fakePortfolioService{}))

	body, contentType := multipartUpload(t, "", true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImportStatement_MissingFile(t *testing.T) {
	router := newTestRouter(NewHandler(&fakePortfolioService{}))

	body, contentType := multipartUpload(t, "user-1", false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImportStatement_MissingColumns(t *testing.T) {
	svc := &fakePortfolioService{importErr: &importer.MissingColumnsError{Missing: []string{"Data", "Produto"}}}
	router := newTestRouter(NewHandler(svc))

	body, contentType := multipartUpload(t, "user-1", true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
	}
}

func TestImportStatement_InternalError(t *testing.T) {
	svc := &fakePortfolioService{importErr: errors.New("db down")}
	router := newTestRouter(NewHandler(svc))

	body, contentType := multipartUpload(t, "user-1", true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGetPositions_OK(t *testing.T) {
	svc := &fakePortfolioService{positions: []models.Position{{Ticker: "PETR4", CurrentQuantity: 80, AverageCost: 9.5, InvestedValue: 760}}}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var positions []models.Position
	if err := json.Unmarshal(rec.Body.Bytes(), &positions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(positions) != 1 || positions[0].Ticker != "PETR4" {
		t.Fatalf("body = %+v", positions)
	}
}

func TestGetPositions_MissingUserID(t *testing.T) {
	router := newTestRouter(NewHandler(&fakePortfolioService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTradeYearDetails_ParsesYear(t *testing.T) {
	svc := &fakePortfolioService{tradeDetails: []models.TradeTickerSummary{{Ticker: "ABEV3"}}}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades/years/2023?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastYear != 2023 {
		t.Fatalf("year = %d, want 2023", svc.lastYear)
	}
}

func TestGetTradeYearDetails_BadYear(t *testing.T) {
	router := newTestRouter(NewHandler(&fakePortfolioService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades/years/not-a-year?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetProventosOverall_TopN(t *testing.T) {
	svc := &fakePortfolioService{overall: models.ProventoOverallSummary{Total: 130}}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proventos/overall?user_id=user-1&top_n=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastTopN != 3 {
		t.Fatalf("topN = %d, want 3", svc.lastTopN)
	}
}

func TestGetProventosOverall_DefaultTopN(t *testing.T) {
	svc := &fakePortfolioService{}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proventos/overall?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastTopN != 5 {
		t.Fatalf("topN = %d, want default 5", svc.lastTopN)
	}
}

func TestGetProventosOverall_InvalidTopN(t *testing.T) {
	router := newTestRouter(NewHandler(&fakePortfolioService{}))

	for _, q := range []string{"top_n=-1", "top_n=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/proventos/overall?user_id=user-1&"+q, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestDeleteOperations_OK(t *testing.T) {
	svc := &fakePortfolioService{deleted: 42}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/operations?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["total_deleted"] != 42 {
		t.Fatalf("body = %v", resp)
	}
}

func TestGetTradeYears_ServiceError(t *testing.T) {
	svc := &fakePortfolioService{err: errors.New("db down")}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades/years?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
