package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/jhoicas/Almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/Almoxarifado-api/internal/application/loan"
	"github.com/jhoicas/Almoxarifado-api/internal/application/ports"
	"github.com/jhoicas/Almoxarifado-api/internal/application/transfer"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	ProductUC      *usecase.ProductUseCase
	LocationUC     *usecase.LocationUseCase
	CollaboratorUC *usecase.CollaboratorUseCase
	SupplierUC     *usecase.SupplierUseCase
	InventoryUC    *inventory.InventoryUseCase
	LoanUC         *loan.UseCase
	TransferUC     *transfer.UseCase
	ReportUC       *appanalytics.ReportUseCase
	AuditUC        *audit.UseCase
	Idempotency    ports.IdempotencyStore
	JWTSecret      string
	LoginPerMinute int // 0 = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público, con límite por IP)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginPerMinute > 0 {
		authGroup.Post("/login", limiter.New(limiter.Config{
			Max:        deps.LoginPerMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiados intentos, espere un minuto"})
			},
		}), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(entity.RoleAdmin, entity.RoleUser)
	admins := RequireRole(entity.RoleAdmin)
	idem := Idempotency(deps.Idempotency)

	// Users (solo admin)
	users := protected.Group("/users", admins)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", admins, productHandler.Delete)
	groups := protected.Group("/product-groups")
	groups.Get("/", productHandler.ListGroups)
	groups.Post("/", writers, productHandler.CreateGroup)

	// Locations
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/", writers, locationHandler.Create)
	locations.Put("/:id", writers, locationHandler.Update)
	locations.Delete("/:id", admins, locationHandler.Delete)

	// Collaborators y suppliers
	collaboratorHandler := NewCollaboratorHandler(deps.CollaboratorUC, deps.SupplierUC)
	collaborators := protected.Group("/collaborators")
	collaborators.Get("/", collaboratorHandler.List)
	collaborators.Get("/:id", collaboratorHandler.GetByID)
	collaborators.Post("/", writers, collaboratorHandler.Create)
	collaborators.Put("/:id", writers, collaboratorHandler.Update)
	collaborators.Delete("/:id", admins, collaboratorHandler.Deactivate)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", collaboratorHandler.ListSuppliers)
	suppliers.Get("/:id", collaboratorHandler.GetSupplier)
	suppliers.Post("/", writers, collaboratorHandler.CreateSupplier)
	suppliers.Put("/:id", writers, collaboratorHandler.UpdateSupplier)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/receipts", writers, idem, inventoryHandler.Receive)
	invGroup.Post("/adjustments", writers, idem, inventoryHandler.Adjust)
	invGroup.Get("/locations/:id/stock", inventoryHandler.StockByLocation)
	invGroup.Get("/products/:id/stock", inventoryHandler.StockByProduct)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Delete("/movements/retention", admins, inventoryHandler.PurgeMovements)

	// Loans
	loans := protected.Group("/loans")
	loanHandler := NewLoanHandler(deps.LoanUC)
	loans.Get("/", loanHandler.List)
	loans.Get("/:id", loanHandler.Get)
	loans.Post("/", writers, idem, loanHandler.Create)
	loans.Post("/:id/returns", writers, idem, loanHandler.Return)
	loans.Post("/:id/lost", admins, loanHandler.MarkLost)

	// Transfers
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/", writers, idem, transferHandler.Create)
	transfers.Post("/:id/approve", admins, transferHandler.Approve)
	transfers.Post("/:id/dispatch", writers, transferHandler.Dispatch)
	transfers.Post("/:id/complete", writers, transferHandler.Complete)
	transfers.Post("/:id/cancel", writers, transferHandler.Cancel)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC, deps.AuditUC)
	reports.Get("/stock-position", reportHandler.StockPosition)
	reports.Get("/shortages", reportHandler.Shortages)
	reports.Get("/movements", reportHandler.MovementSummary)
	reports.Get("/loans", reportHandler.LoanSummary)
	reports.Get("/transfers", reportHandler.TransferSummary)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/valuation", reportHandler.Valuation)

	// Audit (solo admin)
	auditGroup := protected.Group("/audit", admins)
	auditGroup.Get("/", reportHandler.ListAudit)
	auditGroup.Delete("/retention", reportHandler.PurgeAudit)
}
