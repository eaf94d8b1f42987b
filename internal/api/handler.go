package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/carteirapulse/internal/domain/dto"
	"github.com/guttosm/carteirapulse/internal/importer"
	"github.com/guttosm/carteirapulse/internal/service"
)

// Handler provides HTTP handlers for statement import and portfolio
// aggregation endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP parameters
//   - Interact with the service layer
//   - Translate results into response DTOs
//   - Return structured JSON responses with appropriate status codes
type Handler struct {
	svc service.PortfolioService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.PortfolioService) *Handler {
	return &Handler{svc: svc}
}

// userID extracts and validates the mandatory user_id parameter.
// Authentication is out of scope; the id is a passthrough tenant key.
func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Query("user_id"))
	if id == "" {
		id = strings.TrimSpace(c.PostForm("user_id"))
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("user_id is required", nil))
		return "", false
	}
	return id, true
}

// yearParam parses the :year path segment.
func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid year", err))
		return 0, false
	}
	return year, true
}

// ImportStatement handles POST /api/v1/import requests.
//
// ImportStatement godoc
// @Summary      Import a brokerage statement
// @Description  Parses an XLSX statement export, classifies its rows into operations, and persists the ones not already imported
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        user_id  formData  string  true  "User identifier"
// @Param        file     formData  file    true  "Statement .xlsx file"
// @Success      200      {object}  dto.ImportResponse     "Success"
// @Failure      400      {object}  dto.ErrorResponse      "Bad Request"
// @Failure      422      {object}  dto.ErrorResponse      "Missing required columns"
// @Failure      500      {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/import [post]
func (h *Handler) ImportStatement(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("file is required", err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("failed to read uploaded file", err))
		return
	}
	defer func() { _ = f.Close() }()

	summary, err := h.svc.ImportStatement(c.Request.Context(), user, f)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("statement is missing required columns", missing))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("import failed", err))
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		TotalRowsRead:         summary.TotalRowsRead,
		TotalImported:         summary.TotalImported,
		TotalSkippedDuplicate: summary.TotalSkippedDuplicate,
	})
}

// GetPositions handles GET /api/v1/positions requests.
//
// GetPositions godoc
// @Summary      Current positions
// @Description  Returns per-ticker holdings computed with weighted-average cost over all imported operations
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Success      200      {array}   models.Position        "Success"
// @Failure      400      {object}  dto.ErrorResponse      "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/positions [get]
func (h *Handler) GetPositions(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	positions, err := h.svc.Positions(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to compute positions", err))
		return
	}
	c.JSON(http.StatusOK, positions)
}

// GetTradeYears handles GET /api/v1/trades/years requests.
//
// GetTradeYears godoc
// @Summary      Annual trade summaries
// @Description  Returns per-year purchase/sale totals, most recent year first
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Success      200      {array}   models.TradeYearHeader  "Success"
// @Failure      400      {object}  dto.ErrorResponse       "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse       "Internal Error"
// @Router       /api/v1/trades/years [get]
func (h *Handler) GetTradeYears(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	years, err := h.svc.TradesByYear(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to summarize trades", err))
		return
	}
	c.JSON(http.StatusOK, years)
}

// GetTradeYearDetails handles GET /api/v1/trades/years/:year requests.
//
// GetTradeYearDetails godoc
// @Summary      Trade details for one year
// @Description  Returns per-ticker purchase/sale totals for the given year, ticker ascending
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Param        year     path      int     true  "Calendar year" example(2024)
// @Success      200      {array}   models.TradeTickerSummary  "Success"
// @Failure      400      {object}  dto.ErrorResponse          "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse          "Internal Error"
// @Router       /api/v1/trades/years/{year} [get]
func (h *Handler) GetTradeYearDetails(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	details, err := h.svc.TradeYearDetails(c.Request.Context(), user, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to summarize trades", err))
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetProventoYears handles GET /api/v1/proventos/years requests.
//
// GetProventoYears godoc
// @Summary      Annual income summaries
// @Description  Returns per-year dividend and interest-on-equity totals, most recent year first
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Success      200      {array}   models.ProventoYearHeader  "Success"
// @Failure      400      {object}  dto.ErrorResponse          "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse          "Internal Error"
// @Router       /api/v1/proventos/years [get]
func (h *Handler) GetProventoYears(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	years, err := h.svc.ProventosByYear(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to summarize proventos", err))
		return
	}
	c.JSON(http.StatusOK, years)
}

// GetProventoYearDetails handles GET /api/v1/proventos/years/:year requests.
//
// GetProventoYearDetails godoc
// @Summary      Income details for one year
// @Description  Returns per-ticker dividend/interest breakdown for the given year, ticker ascending
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Param        year     path      int     true  "Calendar year" example(2024)
// @Success      200      {array}   models.ProventoTickerSummary  "Success"
// @Failure      400      {object}  dto.ErrorResponse             "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse             "Internal Error"
// @Router       /api/v1/proventos/years/{year} [get]
func (h *Handler) GetProventoYearDetails(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	details, err := h.svc.ProventosYearDetails(c.Request.Context(), user, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to summarize proventos", err))
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetProventosOverall handles GET /api/v1/proventos/overall requests.
//
// GetProventosOverall godoc
// @Summary      Overall income summary
// @Description  Returns all-time income totals plus the top payers ranked by total income
// @Tags         portfolio
// @Produce      json
// @Param        user_id  query     string  true   "User identifier"
// @Param        top_n    query     int     false  "Number of top payers to return (default 5)"
// @Success      200      {object}  models.ProventoOverallSummary  "Success"
// @Failure      400      {object}  dto.ErrorResponse              "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse              "Internal Error"
// @Router       /api/v1/proventos/overall [get]
func (h *Handler) GetProventosOverall(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	topN := 5
	if s := c.Query("top_n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid top_n", err))
			return
		}
		topN = n
	}

	summary, err := h.svc.ProventosOverall(c.Request.Context(), user, topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to summarize proventos", err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteOperations handles DELETE /api/v1/operations requests.
//
// DeleteOperations godoc
// @Summary      Delete all operations
// @Description  Removes every imported operation of the user
// @Tags         import
// @Produce      json
// @Param        user_id  query     string  true  "User identifier"
// @Success      200      {object}  map[string]int64   "Success"
// @Failure      400      {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/operations [delete]
func (h *Handler) DeleteOperations(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteOperations(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to delete operations", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_deleted": deleted})
}
