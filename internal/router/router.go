package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/config"
	"github.com/tabletime/tabletime-backend/internal/app/controller"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts.
type Controllers struct {
	User              *controller.UserController
	Restaurant        *controller.RestaurantController
	Table             *controller.TableController
	Meal              *controller.MealController
	VipRoom           *controller.VipRoomController
	Reservation       *controller.ReservationController
	ReservationEvents *controller.ReservationEventsController
	Review            *controller.ReviewController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "TableTime API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()
	ownerOnly := r.authMiddleware.RequireRole(model.RoleRestaurantOwner)
	userOnly := r.authMiddleware.RequireRole(model.RoleUser)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			ctrl := r.controllers.User
			users.POST("/signup", ctrl.Signup)
			users.GET("/verify/:token", ctrl.VerifyEmail)
			users.POST("/signin", ctrl.Signin)
			users.POST("/forgot-password", ctrl.ForgotPassword)
			users.POST("/reset-password", ctrl.ResetPassword)

			me := users.Group("", authenticated)
			me.GET("/profile", ctrl.Profile)
			me.PUT("/update", ctrl.UpdateProfile)
			me.PATCH("/change-password", ctrl.ChangePassword)
			me.POST("/logout", ctrl.Logout)
			me.DELETE("/delete-account", ctrl.DeleteAccount)
			me.GET("/favorites", ctrl.Favorites)
			me.POST("/favorites/:restaurantId", ctrl.AddFavorite)
			me.DELETE("/favorites/:restaurantId", ctrl.RemoveFavorite)
		}

		restaurants := v1.Group("/restaurants")
		{
			ctrl := r.controllers.Restaurant
			restaurants.GET("", ctrl.List)
			restaurants.GET("/search", ctrl.Search)
			restaurants.GET("/owner/:ownerId", ctrl.GetByOwner)
			restaurants.GET("/:id", ctrl.GetByID)

			owner := restaurants.Group("", authenticated, ownerOnly)
			owner.POST("/create", ctrl.Create)
			owner.PUT("/update/:id", ctrl.Update)
			owner.DELETE("/:id", ctrl.Delete)
		}

		tables := v1.Group("/tables")
		{
			ctrl := r.controllers.Table
			tables.GET("/restaurant/:restaurantId", ctrl.ListByRestaurant)
			tables.GET("/:id", ctrl.GetByID)

			owner := tables.Group("", authenticated, ownerOnly)
			owner.POST("/create", ctrl.Create)
			owner.PUT("/update/:id", ctrl.Update)
			owner.DELETE("/delete/:id", ctrl.Delete)
		}

		meals := v1.Group("/meals")
		{
			ctrl := r.controllers.Meal
			meals.GET("/featured", ctrl.Featured)
			meals.GET("/restaurant/:restaurantId", ctrl.ListByRestaurant)
			meals.GET("/:id", ctrl.GetByID)

			owner := meals.Group("", authenticated, ownerOnly)
			owner.POST("/create", ctrl.Create)
			owner.PUT("/update/:id", ctrl.Update)
			owner.DELETE("/delete/:id", ctrl.Delete)
		}

		vipRooms := v1.Group("/vip-rooms")
		{
			ctrl := r.controllers.VipRoom
			vipRooms.GET("/restaurant/:restaurantId", ctrl.ListByRestaurant)
			vipRooms.GET("/:id", ctrl.GetByID)

			owner := vipRooms.Group("", authenticated, ownerOnly)
			owner.POST("/create", ctrl.Create)
			owner.PATCH("/update/:id", ctrl.Update)
			owner.DELETE("/delete/:id", ctrl.Delete)
		}

		reservations := v1.Group("/reservations", authenticated)
		{
			ctrl := r.controllers.Reservation
			reservations.POST("/create", ctrl.Create)
			reservations.PUT("/update/:id", ctrl.Update)
			reservations.GET("/my", ctrl.ListMine)
			reservations.PATCH("/status/:id", ctrl.ChangeStatus)
			reservations.GET("/:id", ctrl.Get)
			reservations.GET("/restaurant/:restaurantId", ownerOnly, ctrl.ListForRestaurant)
			reservations.GET("/restaurant/:restaurantId/export", ownerOnly, ctrl.Export)
		}

		reviews := v1.Group("/reviews")
		{
			ctrl := r.controllers.Review
			reviews.GET("/restaurant/:restaurantId", ctrl.ListByRestaurant)

			author := reviews.Group("", authenticated, userOnly)
			author.POST("/create", ctrl.Create)
			author.PUT("/update/:id", ctrl.Update)
			author.DELETE("/delete/:id", ctrl.Delete)
		}

		v1.GET("/ws/reservations", authenticated, ownerOnly, r.controllers.ReservationEvents.Subscribe)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message":   "Route not found",
			"errorData": gin.H{"code": "RESOURCE_NOT_FOUND"},
			"location":  c.Request.URL.Path,
		})
	})

	return router
}

// corsMiddleware allows the configured origins; "*" reflects any origin so credentials still work.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "token", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case lo.Contains(allowedOrigins, "*"):
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(allowedOrigins) == 0:
		cfg.AllowOriginFunc = func(string) bool { return false }
	default:
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
