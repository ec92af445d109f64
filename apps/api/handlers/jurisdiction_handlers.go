package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealgrid/dealgrid-api/libs/go/policy"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/responses"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// JurisdictionHandler exposes read-only views of the loaded policy
// snapshot
type JurisdictionHandler struct {
	store *policy.Store
}

// NewJurisdictionHandler creates a new jurisdiction handler
func NewJurisdictionHandler(store *policy.Store) *JurisdictionHandler {
	return &JurisdictionHandler{store: store}
}

// ListJurisdictions returns the loaded jurisdiction codes and dataset
// version
func (h *JurisdictionHandler) ListJurisdictions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":       h.store.Version(),
		"jurisdictions": h.store.ListJurisdictions(),
	})
}

// GetJurisdiction returns one jurisdiction's policy summary
func (h *JurisdictionHandler) GetJurisdiction(c *gin.Context) {
	p, err := h.store.GetPolicy(c.Param("code"))
	if err != nil {
		var unknown *business.UnknownJurisdictionError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, responses.JurisdictionResponse{
		Code:             p.Code,
		Name:             p.Name,
		StateRate:        p.StateRate,
		HasLocalTax:      p.HasLocalTax,
		AverageLocalRate: p.AverageLocalRate,
		VehicleTaxScheme: string(p.VehicleTaxScheme),
		TradeCredit:      string(p.TradeCredit),
		LeaseMethod:      string(p.Lease.Method),
	})
}
