package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/services"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/responses"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// QuoteHandler serves deal quotes, standalone tax calculations and
// payment matrices. It adapts JSON to the core services and owns no
// business rules.
type QuoteHandler struct {
	deals  *services.DealService
	matrix *services.MatrixService
	logger *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(deals *services.DealService, matrix *services.MatrixService) *QuoteHandler {
	return &QuoteHandler{
		deals:  deals,
		matrix: matrix,
		logger: logger.Log,
	}
}

// ComputeDeal prices a deal end to end
func (h *QuoteHandler) ComputeDeal(c *gin.Context) {
	var input params.DealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.deals.ComputeDeal(input)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.DealResponse{Deal: *result})
}

// ComputeTax runs a standalone tax calculation for an assembled breakdown
func (h *QuoteHandler) ComputeTax(c *gin.Context) {
	var req struct {
		Breakdown        business.PriceBreakdown `json:"breakdown"`
		JurisdictionCode string                  `json:"jurisdiction_code"`
		PostalCode       string                  `json:"postal_code"`
		DealType         business.DealType       `json:"deal_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.deals.ComputeTax(params.TaxCalculationParams{
		Breakdown:        req.Breakdown,
		JurisdictionCode: req.JurisdictionCode,
		PostalCode:       req.PostalCode,
		DealType:         req.DealType,
	})
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateMatrix produces a payment comparison table
func (h *QuoteHandler) GenerateMatrix(c *gin.Context) {
	var req struct {
		AmountFinanced float64 `json:"amount_financed"`
		BaseAPR        float64 `json:"base_apr"`
		Terms          []int   `json:"terms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.AmountFinanced <= 0 {
		c.JSON(http.StatusUnprocessableEntity, responses.ValidationErrorResponse{
			Errors: []string{"amount financed must be greater than zero"},
		})
		return
	}

	matrix := h.matrix.Generate(params.MatrixParams{
		AmountFinanced: req.AmountFinanced,
		BaseAPR:        req.BaseAPR,
		Terms:          req.Terms,
	})

	c.JSON(http.StatusOK, matrix)
}

// ConvertMoneyFactor converts between money factor and APR
func (h *QuoteHandler) ConvertMoneyFactor(c *gin.Context) {
	var req struct {
		MoneyFactor *float64 `json:"money_factor,omitempty"`
		APR         *float64 `json:"apr,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	switch {
	case req.MoneyFactor != nil:
		c.JSON(http.StatusOK, gin.H{
			"money_factor": *req.MoneyFactor,
			"apr":          helpers.MoneyFactorToAPR(*req.MoneyFactor),
		})
	case req.APR != nil:
		c.JSON(http.StatusOK, gin.H{
			"apr":          *req.APR,
			"money_factor": helpers.APRToMoneyFactor(*req.APR),
		})
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "provide money_factor or apr"})
	}
}

// respondComputeError maps the two error classes distinctly: validation
// lists return 422 with every violation; structural errors return 400
// so callers can tell a contract defect from bad input values.
func (h *QuoteHandler) respondComputeError(c *gin.Context, err error) {
	var validationErrs business.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusUnprocessableEntity, responses.ValidationErrorResponse{Errors: validationErrs})
		return
	}

	var unknownJurisdiction *business.UnknownJurisdictionError
	var missingTerms *business.MissingTermsError
	if errors.As(err, &unknownJurisdiction) || errors.As(err, &missingTerms) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var ruleConfig *business.RuleConfigError
	if errors.As(err, &ruleConfig) {
		h.logger.Error("rule configuration defect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.logger.Error("deal computation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
