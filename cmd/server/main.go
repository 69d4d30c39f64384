package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabletime/tabletime-backend/config"
	"github.com/tabletime/tabletime-backend/internal/app/controller"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/internal/app/service"
	"github.com/tabletime/tabletime-backend/internal/db"
	"github.com/tabletime/tabletime-backend/internal/middleware"
	"github.com/tabletime/tabletime-backend/internal/router"
	"github.com/tabletime/tabletime-backend/internal/storage"
	ws "github.com/tabletime/tabletime-backend/internal/websocket"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/mailer"
	pkgredis "github.com/tabletime/tabletime-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting TableTime Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	assets, err := storage.New(ctx, cfg.Asset)
	if err != nil {
		logger.Fatal("Failed to initialize asset store", err)
	}
	mail := mailer.New(cfg.Mail)

	// The blacklist is optional; without redis, logout only drops the client-side token.
	var revoker service.TokenRevoker
	var revoked middleware.RevocationChecker
	if cfg.Redis.Enabled {
		client, err := pkgredis.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer client.Close()
		blacklist := pkgredis.NewTokenBlacklist(client)
		revoker, revoked = blacklist, blacklist
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	store := repository.NewStore(db.GetDB())

	authService := service.NewAuthService(store, assets, mail, revoker, service.AuthConfig{
		JWTSecret:          cfg.JWT.Secret,
		AccessExpiry:       cfg.JWT.AccessTokenExpiry,
		ConfirmationSecret: cfg.JWT.ConfirmationSecret,
		ConfirmationExpiry: cfg.JWT.ConfirmationExpiry,
		ResetExpiry:        cfg.JWT.ResetTokenExpiry,
		BaseURL:            cfg.Server.BaseURL,
	})
	cascadeService := service.NewCascadeService(store, assets)
	restaurantService := service.NewRestaurantService(store, assets, cfg.Catalog.AllowedCategories)
	tableService := service.NewTableService(store)
	mealService := service.NewMealService(store, assets)
	vipRoomService := service.NewVipRoomService(store, assets)
	reservationService := service.NewReservationService(store, hub)
	reviewService := service.NewReviewService(store)

	r := router.NewRouter(router.Controllers{
		User:              controller.NewUserController(authService, cascadeService),
		Restaurant:        controller.NewRestaurantController(restaurantService, cascadeService),
		Table:             controller.NewTableController(tableService, cascadeService),
		Meal:              controller.NewMealController(mealService, cascadeService),
		VipRoom:           controller.NewVipRoomController(vipRoomService, cascadeService),
		Reservation:       controller.NewReservationController(reservationService),
		ReservationEvents: controller.NewReservationEventsController(restaurantService, hub, cfg.CORS.AllowedOrigins),
		Review:            controller.NewReviewController(reviewService),
	}, middleware.NewAuthMiddleware(cfg.JWT.Secret, revoked), cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
