package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-manager/controllers"
	"hotel-manager/middleware"
	"hotel-manager/models"
	"hotel-manager/services"
)

// Handlers bundles every controller the router mounts.
type Handlers struct {
	Auth      *controllers.AuthController
	Dashboard *controllers.DashboardController
	Reception *controllers.ReceptionController
	Ledger    *controllers.LedgerController
	Users     *controllers.UserController
	Groups    *controllers.GroupController

	Floors     *controllers.CatalogController[models.Floor]
	RoomTypes  *controllers.CatalogController[models.RoomType]
	Rooms      *controllers.CatalogController[models.Room]
	Categories *controllers.CatalogController[models.Category]
	Suppliers  *controllers.CatalogController[models.Supplier]
	Clients    *controllers.CatalogController[models.Client]
	Products   *controllers.CatalogController[models.Product]
}

type crudHandlers interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func cleanOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, part := range raw {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func corsMiddleware(corsOrigins []string) gin.HandlerFunc {
	origins := cleanOrigins(corsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	})
}

// registerCRUD mounts the five CRUD routes guarded by <domain>.<action>_<entity>.
func registerCRUD(g *gin.RouterGroup, authz services.Authorizer, path, domain, entity string, h crudHandlers) {
	perm := func(action string) gin.HandlerFunc {
		return middleware.RequirePermission(authz, models.CRUDPermission(domain, action, entity))
	}
	g.GET(path, perm("view"), h.List)
	g.GET(path+"/:id", perm("view"), h.Get)
	g.POST(path, perm("add"), h.Create)
	g.PUT(path+"/:id", perm("change"), h.Update)
	g.PATCH(path+"/:id", perm("change"), h.Update)
	g.DELETE(path+"/:id", perm("delete"), h.Delete)
}

func SetupRouter(corsOrigins []string, h Handlers, auth *services.AuthService, authz services.Authorizer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), corsMiddleware(corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/auth/login", h.Auth.Login)

	private := api.Group("")
	private.Use(middleware.Authenticate(auth))
	{
		can := func(perm string) gin.HandlerFunc { return middleware.RequirePermission(authz, perm) }

		private.GET("/auth/me", h.Auth.Me)
		private.GET("/dashboard", can(models.PermViewDashboard), h.Dashboard.Summary)

		// reception
		private.GET("/reception", can(models.PermViewRoomBoard), h.Reception.Board)
		private.GET("/rooms/:id/reservation", can(models.PermViewRoomBoard), h.Reception.ActiveReservation)
		private.POST("/rooms/:id/occupy", can(models.PermOccupyRoom), h.Reception.Occupy)
		private.POST("/rooms/:id/consumptions", can(models.PermAddConsumption), h.Reception.RegisterConsumption)
		private.POST("/rooms/:id/checkout", can(models.PermCheckoutRoom), h.Reception.Checkout)
		private.POST("/rooms/:id/mark-cleaning", can(models.PermCleanRoom), h.Reception.MarkCleaning)
		private.POST("/rooms/:id/mark-available", can(models.PermReleaseRoom), h.Reception.MarkAvailable)

		private.GET("/reservations", can(models.PermViewReservation), h.Reception.ListReservations)
		private.GET("/reservations/:id", can(models.PermViewReservation), h.Reception.GetReservation)
		private.PUT("/reservations/:id", can(models.PermChangeReservation), h.Reception.UpdateReservation)

		// catalog
		registerCRUD(private, authz, "/floors", "catalog", "floor", h.Floors)
		registerCRUD(private, authz, "/room-types", "catalog", "roomtype", h.RoomTypes)
		registerCRUD(private, authz, "/rooms", "catalog", "room", h.Rooms)
		registerCRUD(private, authz, "/categories", "catalog", "category", h.Categories)
		registerCRUD(private, authz, "/suppliers", "catalog", "supplier", h.Suppliers)
		registerCRUD(private, authz, "/clients", "catalog", "client", h.Clients)
		registerCRUD(private, authz, "/products", "catalog", "product", h.Products)
		private.GET("/products/:id/movements",
			can(models.CRUDPermission("catalog", "view", "product")), h.Ledger.StockMovements)

		// ledger
		purchases := private.Group("/purchases")
		{
			perm := func(action string) gin.HandlerFunc {
				return can(models.CRUDPermission("ledger", action, "purchase"))
			}
			purchases.GET("", perm("view"), h.Ledger.ListPurchases)
			purchases.GET("/:id", perm("view"), h.Ledger.GetPurchase)
			purchases.POST("", perm("add"), h.Ledger.CreatePurchase)
			purchases.PUT("/:id", perm("change"), h.Ledger.UpdatePurchase)
			purchases.DELETE("/:id", perm("delete"), h.Ledger.DeletePurchase)
		}
		sales := private.Group("/sales")
		{
			perm := func(action string) gin.HandlerFunc {
				return can(models.CRUDPermission("ledger", action, "sale"))
			}
			sales.GET("", perm("view"), h.Ledger.ListSales)
			sales.GET("/:id", perm("view"), h.Ledger.GetSale)
			sales.POST("", perm("add"), h.Ledger.CreateSale)
			sales.PUT("/:id", perm("change"), h.Ledger.UpdateSale)
			sales.DELETE("/:id", perm("delete"), h.Ledger.DeleteSale)
		}

		// access control
		private.GET("/groups/permissions",
			can(models.CRUDPermission("auth", "view", "group")), h.Groups.Permissions)
		registerCRUD(private, authz, "/users", "auth", "user", h.Users)
		registerCRUD(private, authz, "/groups", "auth", "group", h.Groups)
	}

	return r
}
