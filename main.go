package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"hotel-manager/config"
	"hotel-manager/controllers"
	"hotel-manager/queue"
	"hotel-manager/routes"
	"hotel-manager/services"
)

func main() {
	app := &cli.App{
		Name:  "hotel-manager",
		Usage: "hotel reception, stock and sales backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
		},
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API", Action: serve},
			{Name: "migrate", Usage: "create or update the database schema", Action: migrate},
			{Name: "seed", Usage: "create default groups and the initial superuser", Action: seed},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func bootstrap(c *cli.Context) (config.Config, *gorm.DB, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return cfg, nil, err
	}
	config.SetupLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return cfg, nil, errors.Wrap(err, "database connect failed")
	}
	log.WithField("driver", cfg.DBDriver).Info("database connection established")
	return cfg, db, nil
}

func migrate(c *cli.Context) error {
	_, db, err := bootstrap(c)
	if err != nil {
		return err
	}
	if err := config.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func seed(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}
	if err := config.AutoMigrate(db); err != nil {
		return err
	}
	return config.Seed(db, cfg)
}

// buildRouter wires services and controllers; also used by the HTTP tests.
func buildRouter(cfg config.Config, db *gorm.DB, cache *services.DashboardCache, events services.EventPublisher) http.Handler {
	authSvc := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	occupancy := services.NewOccupancyService(db, events, cache)
	loc := cfg.Location()

	h := routes.Handlers{
		Auth:      controllers.NewAuthController(authSvc),
		Dashboard: controllers.NewDashboardController(services.NewDashboardService(db, cache, loc)),
		Reception: controllers.NewReceptionController(occupancy, loc),
		Ledger:    controllers.NewLedgerController(services.NewLedgerService(db)),
		Users:     controllers.NewUserController(services.NewUserService(db, cfg.BcryptCost)),
		Groups:    controllers.NewGroupController(services.NewGroupService(db)),

		Floors:     controllers.NewCatalogController(services.NewFloorService(db)),
		RoomTypes:  controllers.NewCatalogController(services.NewRoomTypeService(db)),
		Rooms:      controllers.NewCatalogController(services.NewRoomService(db, cache)),
		Categories: controllers.NewCatalogController(services.NewCategoryService(db)),
		Suppliers:  controllers.NewCatalogController(services.NewSupplierService(db)),
		Clients:    controllers.NewCatalogController(services.NewClientService(db)),
		Products:   controllers.NewCatalogController(services.NewProductService(db)),
	}
	return routes.SetupRouter(cfg.CorsOrigins, h, authSvc, services.PermissionAuthorizer{})
}

func serve(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}
	if err := config.Seed(db, cfg); err != nil {
		return err
	}

	cache := &services.DashboardCache{Client: config.NewRedisClient(cfg), TTL: cfg.DashboardCacheTTL}
	if cache.Client != nil {
		defer func() { _ = cache.Client.Close() }()
	}

	var events services.EventPublisher = queue.Noop{}
	if cfg.RabbitMQURL != "" {
		events = queue.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(cfg, db, cache, events),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	log.Info("server stopped gracefully")
	return nil
}
