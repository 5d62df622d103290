package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"circulation/internal/handler/api"
	"circulation/internal/handler/middleware"
	"circulation/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	circulationHandler *api.CirculationHandler,
	reservationHandler *api.ReservationHandler,
	feeHandler *api.FeeHandler,
	ruleHandler *api.RuleHandler,
	copyHandler *api.CopyHandler,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, circulationHandler, reservationHandler, feeHandler, ruleHandler, copyHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	circulationHandler *api.CirculationHandler,
	reservationHandler *api.ReservationHandler,
	feeHandler *api.FeeHandler,
	ruleHandler *api.RuleHandler,
	copyHandler *api.CopyHandler,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		loans := apiGroup.Group("/loans")
		{
			addRoutes(loans, []route{
				{Method: http.MethodPost, Path: "", Handler: circulationHandler.Borrow},
				{Method: http.MethodPost, Path: "/return", Handler: circulationHandler.Return},
				{Method: http.MethodPost, Path: "/renew", Handler: circulationHandler.Renew},
				{Method: http.MethodGet, Path: "/overdue", Handler: circulationHandler.ListOverdueLoans},
				{Method: http.MethodPost, Path: "/:id/overdue-fine", Handler: feeHandler.CalculateOverdueFine},
				{Method: http.MethodPost, Path: "/:id/loss-compensation", Handler: feeHandler.CalculateLossCompensation},
				{Method: http.MethodPost, Path: "/:id/settle-fine", Handler: feeHandler.SettleFine},
			})
		}

		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.CreateReservation},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: reservationHandler.CancelReservation},
			})
		}

		borrowers := apiGroup.Group("/borrowers")
		{
			addRoutes(borrowers, []route{
				{Method: http.MethodGet, Path: "/:borrower_id/loans", Handler: circulationHandler.ListActiveLoans},
				{Method: http.MethodGet, Path: "/:borrower_id/fines", Handler: circulationHandler.ListUnpaidFines},
				{Method: http.MethodGet, Path: "/:borrower_id/reservations", Handler: reservationHandler.ListBorrowerReservations},
			})
		}

		books := apiGroup.Group("/books")
		{
			addRoutes(books, []route{
				{Method: http.MethodGet, Path: "/:book_id/availability", Handler: reservationHandler.GetAvailability},
				{Method: http.MethodPost, Path: "/:book_id/borrow", Handler: circulationHandler.BorrowBook},
			})
		}

		copies := apiGroup.Group("/copies")
		{
			addRoutes(copies, []route{
				{Method: http.MethodPost, Path: "/:id/maintenance", Handler: copyHandler.SendToMaintenance},
				{Method: http.MethodPost, Path: "/:id/maintenance/complete", Handler: copyHandler.ReturnFromMaintenance},
			})
		}

		rules := apiGroup.Group("/rules")
		{
			addRoutes(rules, []route{
				{Method: http.MethodGet, Path: "", Handler: ruleHandler.ListRules},
				{Method: http.MethodGet, Path: "/:key", Handler: ruleHandler.GetRule},
				{Method: http.MethodPut, Path: "/:key", Handler: ruleHandler.UpdateRule},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
