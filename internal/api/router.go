package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/automation"
	automationHttp "github.com/clubworks/equipment-booking-backend/internal/automation/http"
	"github.com/clubworks/equipment-booking-backend/internal/booking"
	bookingHttp "github.com/clubworks/equipment-booking-backend/internal/booking/http"
	"github.com/clubworks/equipment-booking-backend/internal/equipment"
	equipmentHttp "github.com/clubworks/equipment-booking-backend/internal/equipment/http"
	"github.com/clubworks/equipment-booking-backend/internal/notification"
	notificationHttp "github.com/clubworks/equipment-booking-backend/internal/notification/http"
	"github.com/clubworks/equipment-booking-backend/internal/user"
	userHttp "github.com/clubworks/equipment-booking-backend/internal/user/http"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
	zoneHttp "github.com/clubworks/equipment-booking-backend/internal/zone/http"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma-separated allowed origins in production

	UserService         user.Service
	ZoneService         zone.Service
	EquipmentService    equipment.Service
	ImageService        equipment.ImageService
	BookingService      booking.Service
	AutomationService   automation.Service
	NotificationService notification.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and
// registering routes for every module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)

	authHandler := NewAuthHandler(cfg.UserService, cfg.JWTManager)
	userHandler := userHttp.NewHandler(cfg.UserService)
	zoneHandler := zoneHttp.NewHandler(cfg.ZoneService, cfg.UserService)
	equipmentHandler := equipmentHttp.NewHandler(cfg.EquipmentService, cfg.ImageService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	automationHandler := automationHttp.NewHandler(cfg.AutomationService)
	notificationHandler := notificationHttp.NewHandler(cfg.NotificationService)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/users/me", authMiddleware, authHandler.Me)

		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware)
		zoneHttp.RegisterRoutes(v1, zoneHandler, authMiddleware, sysAdminMiddleware)
		equipmentHttp.RegisterRoutes(v1, equipmentHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		automationHttp.RegisterRoutes(v1, automationHandler, authMiddleware)
		notificationHttp.RegisterRoutes(v1, notificationHandler, authMiddleware)
	}

	return r
}
