package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dealgrid/dealgrid-api/apps/api/handlers"
	"github.com/dealgrid/dealgrid-api/libs/go/localrates"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/policy"
	"github.com/dealgrid/dealgrid-api/libs/go/services"
)

// Handler definitions
var (
	quoteHandler        *handlers.QuoteHandler
	jurisdictionHandler *handlers.JurisdictionHandler
	healthHandler       *handlers.HealthHandler
)

// InitializeHandlers wires the policy snapshot, the core services and
// the handlers. Both datasets load once at startup; reloads swap whole
// snapshots.
func InitializeHandlers() error {
	policyStore, err := policy.NewStore()
	if err != nil {
		return err
	}
	rateResolver, err := localrates.NewResolver()
	if err != nil {
		return err
	}

	pricingService := services.NewPricingService()
	taxService := services.NewTaxService(policyStore, rateResolver)
	paymentService := services.NewPaymentService()
	reciprocityService := services.NewReciprocityService(policyStore)
	matrixService := services.NewMatrixService(paymentService)
	dealService := services.NewDealService(policyStore, pricingService, taxService, paymentService, reciprocityService)

	quoteHandler = handlers.NewQuoteHandler(dealService, matrixService)
	jurisdictionHandler = handlers.NewJurisdictionHandler(policyStore)
	healthHandler = handlers.NewHealthHandler()

	logger.Info("handlers initialized")
	return nil
}

// InitializeRoutes registers all API routes
func InitializeRoutes(router *gin.Engine) {
	router.Use(configureCORS())

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/quotes", quoteHandler.ComputeDeal)
		v1.POST("/tax", quoteHandler.ComputeTax)
		v1.POST("/matrix", quoteHandler.GenerateMatrix)
		v1.POST("/money-factor", quoteHandler.ConvertMoneyFactor)
		v1.GET("/jurisdictions", jurisdictionHandler.ListJurisdictions)
		v1.GET("/jurisdictions/:code", jurisdictionHandler.GetJurisdiction)
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
