package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/responses"
)

// DefaultMatrixTerms is the term set used when the caller does not
// override it
var DefaultMatrixTerms = []int{36, 48, 60, 72, 84}

// MatrixService fans one amount financed and base APR out across a set
// of terms to produce a payment comparison table. It reuses the finance
// formula; no new rules live here.
type MatrixService struct {
	payments *PaymentService
	logger   *zap.Logger
}

// NewMatrixService creates a new matrix service
func NewMatrixService(payments *PaymentService) *MatrixService {
	return &MatrixService{
		payments: payments,
		logger:   logger.Log,
	}
}

// Generate computes payment, total interest and total cost per term
func (s *MatrixService) Generate(p params.MatrixParams) *responses.PaymentMatrix {
	terms := p.Terms
	if len(terms) == 0 {
		terms = DefaultMatrixTerms
	}

	matrix := &responses.PaymentMatrix{
		AmountFinanced: p.AmountFinanced,
		BaseAPR:        p.BaseAPR,
		Rows:           make([]responses.PaymentMatrixRow, 0, len(terms)),
		GeneratedAt:    time.Now(),
	}

	for _, term := range terms {
		payment := helpers.MonthlyPayment(p.AmountFinanced, p.BaseAPR, term)
		totalCost := helpers.RoundToCents(payment * float64(term))
		interest := helpers.RoundToCents(totalCost - p.AmountFinanced)
		if interest < 0 {
			interest = 0
		}
		matrix.Rows = append(matrix.Rows, responses.PaymentMatrixRow{
			TermMonths:     term,
			APR:            p.BaseAPR,
			MonthlyPayment: payment,
			TotalInterest:  interest,
			TotalCost:      totalCost,
		})
	}

	s.logger.Debug("generated payment matrix",
		zap.Float64("amount_financed", p.AmountFinanced),
		zap.Float64("base_apr", p.BaseAPR),
		zap.Int("terms", len(terms)))

	return matrix
}
