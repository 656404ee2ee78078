package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubworks/equipment-booking-backend/internal/api"
	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/automation"
	"github.com/clubworks/equipment-booking-backend/internal/booking"
	"github.com/clubworks/equipment-booking-backend/internal/equipment"
	"github.com/clubworks/equipment-booking-backend/internal/jobs"
	"github.com/clubworks/equipment-booking-backend/internal/notification"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/storage"
	"github.com/clubworks/equipment-booking-backend/internal/user"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	UploadDir    string

	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string

	HandoverReminderCron string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router    *gin.Engine
	Scheduler *jobs.Scheduler
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	fileStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Zone module
	zoneRepo := zone.NewPgxRepository(cfg.DBPool)
	zoneService := zone.NewService(zoneRepo, userService)

	// Equipment module
	equipmentRepo := equipment.NewPgxRepository(cfg.DBPool)
	equipmentService := equipment.NewService(equipmentRepo, zoneService)
	imageService := equipment.NewImageService(equipmentRepo, zoneService, fileStorage)

	// Automation module
	automationRepo := automation.NewPgxRepository(cfg.DBPool)
	automationService := automation.NewService(automationRepo, zoneService)

	// Notification module. Email is disabled when no API key is configured.
	notificationRepo := notification.NewPgxRepository(cfg.DBPool)
	notificationService := notification.NewService(notificationRepo)
	var emailSender notification.EmailSender
	if cfg.SendGridAPIKey != "" {
		emailSender = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	}
	dispatcher := notification.NewDispatcher(notificationRepo, userService, zoneService, automationService, emailSender)

	// Booking module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, equipmentService, zoneService, automationService, dispatcher)

	// Background jobs
	scheduler, err := jobs.NewScheduler(bookingService, cfg.HandoverReminderCron)
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		UserService:         userService,
		ZoneService:         zoneService,
		EquipmentService:    equipmentService,
		ImageService:        imageService,
		BookingService:      bookingService,
		AutomationService:   automationService,
		NotificationService: notificationService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:    router,
		Scheduler: scheduler,
	}, nil
}
