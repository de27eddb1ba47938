package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/app"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/controllers"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/middleware"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/routes"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize backend:", err)
	}
	defer application.Close()

	// Repositories
	roleRepo := repositories.NewRoleRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)
	propertyRepo := repositories.NewPropertyRepository(application.DB)
	appointmentRepo := repositories.NewAppointmentRepository(application.DB)
	offerRepo := repositories.NewOfferRepository(application.DB)
	reviewRepo := repositories.NewReviewRepository(application.DB)
	notificationRepo := repositories.NewNotificationRepository(application.DB)

	if err := app.SeedRoles(context.Background(), roleRepo); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to seed roles")
	}
	if err := app.SeedAdminUser(context.Background(), cfg, userRepo, roleRepo); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to seed admin account")
	}

	// Gateways and services
	smsSender := services.NewSMSSender(cfg)
	emailSender := services.NewEmailSender(cfg)

	jwtService := services.NewJWTService(cfg)
	verificationService := services.NewVerificationService(userRepo, smsSender, emailSender, cfg)
	authService := services.NewAuthService(userRepo, roleRepo, jwtService, verificationService)
	userService := services.NewUserService(userRepo, roleRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, propertyRepo, smsSender, cfg)
	propertyService := services.NewPropertyService(propertyRepo, notificationService)
	appointmentService := services.NewAppointmentService(appointmentRepo, propertyRepo, userRepo, smsSender, cfg)
	offerService := services.NewOfferService(offerRepo, propertyRepo)
	reviewService := services.NewReviewService(reviewRepo, appointmentRepo, propertyRepo)
	reminderService := services.NewReminderService(appointmentRepo, propertyRepo, userRepo, smsSender, cfg)

	// Controllers
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService, cfg)
	userController := controllers.NewUserController(userService)
	propertyController := controllers.NewPropertyController(propertyService)
	appointmentController := controllers.NewAppointmentController(appointmentService)
	offerController := controllers.NewOfferController(offerService, userService)
	reviewController := controllers.NewReviewController(reviewService)
	notificationController := controllers.NewNotificationController(notificationService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AuthRegister, authController.Register).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogin, authController.Login).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogout, authController.Logout).Methods(http.MethodPost)

	router.HandleFunc(routes.PropertiesPublic, propertyController.ListPublic).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyPublicByID, propertyController.GetByID).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyReviews, reviewController.ByProperty).Methods(http.MethodGet)

	router.HandleFunc(routes.Appointments, appointmentController.Create).Methods(http.MethodPost)
	router.HandleFunc(routes.AppointmentsAvailable, appointmentController.AvailableSlots).Methods(http.MethodGet)
	router.HandleFunc(routes.AppointmentsConfirmLink, appointmentController.ConfirmByLink).Methods(http.MethodGet)
	router.HandleFunc(routes.AppointmentsConfirmSMS, appointmentController.ConfirmByCode).Methods(http.MethodPost)
	router.HandleFunc(routes.AppointmentsSMSWebhook, appointmentController.SMSWebhook).Methods(http.MethodPost)

	// Authenticated users
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.AuthProfile, authController.Profile).Methods(http.MethodGet)
	secured.HandleFunc(routes.AuthProfileImage, userController.UpdateProfileImage).Methods(http.MethodPut)
	secured.HandleFunc(routes.AuthVerifyCode, authController.VerifyCode).Methods(http.MethodPost)
	secured.HandleFunc(routes.AuthResendCode, authController.ResendCode).Methods(http.MethodPost)

	secured.HandleFunc(routes.MyAppointments, appointmentController.MyAppointments).Methods(http.MethodGet)

	secured.HandleFunc(routes.Offers, offerController.Create).Methods(http.MethodPost)
	secured.HandleFunc(routes.OffersMine, offerController.Mine).Methods(http.MethodGet)
	secured.HandleFunc(routes.OfferMineByID, offerController.GetByID).Methods(http.MethodGet)
	secured.HandleFunc(routes.OfferMineMessages, offerController.AddMessage).Methods(http.MethodPost)
	secured.HandleFunc(routes.OfferRead, offerController.MarkRead).Methods(http.MethodPut)

	secured.HandleFunc(routes.Reviews, reviewController.Create).Methods(http.MethodPost)
	secured.HandleFunc(routes.ReviewHelpful, reviewController.VoteHelpful).Methods(http.MethodPost)

	// Staff (co-admin and admin)
	staff := router.NewRoute().Subrouter()
	staff.Use(
		middleware.AuthMiddleware(cfg.RSAPublicKey),
		middleware.RequireRoles(userRepo, roleRepo, models.RoleCoAdmin, models.RoleAdmin),
	)

	staff.HandleFunc(routes.Appointments, appointmentController.List).Methods(http.MethodGet)
	staff.HandleFunc(routes.AppointmentByID, appointmentController.GetByID).Methods(http.MethodGet)
	staff.HandleFunc(routes.AppointmentConfirm, appointmentController.Confirm).Methods(http.MethodPut)
	staff.HandleFunc(routes.AppointmentComplete, appointmentController.Complete).Methods(http.MethodPut)
	staff.HandleFunc(routes.AppointmentCancel, appointmentController.Cancel).Methods(http.MethodPut)
	staff.HandleFunc(routes.AppointmentAssign, appointmentController.Assign).Methods(http.MethodPut)

	staff.HandleFunc(routes.Properties, propertyController.Create).Methods(http.MethodPost)
	staff.HandleFunc(routes.Properties, propertyController.ListAll).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertiesMine, propertyController.ListMine).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyByID, propertyController.GetByID).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyByID, propertyController.Update).Methods(http.MethodPut)
	staff.HandleFunc(routes.PropertyStatus, propertyController.ChangeStatus).Methods(http.MethodPut)
	staff.HandleFunc(routes.PropertyHistory, propertyController.StatusHistory).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyImages, propertyController.AddImages).Methods(http.MethodPost)
	staff.HandleFunc(routes.PropertyImageByID, propertyController.RemoveImage).Methods(http.MethodDelete)
	staff.HandleFunc(routes.PropertyImageMain, propertyController.SetMainImage).Methods(http.MethodPut)
	staff.HandleFunc(routes.PropertyDocuments, propertyController.AddDocument).Methods(http.MethodPost)
	staff.HandleFunc(routes.PropertyDocumentByID, propertyController.RemoveDocument).Methods(http.MethodDelete)

	staff.HandleFunc(routes.OffersPending, offerController.Pending).Methods(http.MethodGet)
	staff.HandleFunc(routes.OffersAssigned, offerController.Assigned).Methods(http.MethodGet)
	staff.HandleFunc(routes.OfferAssignedByID, offerController.GetByID).Methods(http.MethodGet)
	staff.HandleFunc(routes.OfferAssignedMessage, offerController.AddMessage).Methods(http.MethodPost)
	staff.HandleFunc(routes.OfferTake, offerController.Take).Methods(http.MethodPost)
	staff.HandleFunc(routes.OfferStatus, offerController.ChangeStatus).Methods(http.MethodPut)

	staff.HandleFunc(routes.ReviewsPending, reviewController.Pending).Methods(http.MethodGet)
	staff.HandleFunc(routes.ReviewModerate, reviewController.Moderate).Methods(http.MethodPut)
	staff.HandleFunc(routes.ReviewFeatured, reviewController.SetFeatured).Methods(http.MethodPut)

	staff.HandleFunc(routes.NotificationsStats, notificationController.Stats).Methods(http.MethodGet)
	staff.HandleFunc(routes.NotificationsHistory, notificationController.History).Methods(http.MethodGet)
	staff.HandleFunc(routes.NotificationByID, notificationController.GetByID).Methods(http.MethodGet)
	staff.HandleFunc(routes.NotificationPreview, notificationController.Preview).Methods(http.MethodPost)
	staff.HandleFunc(routes.NotificationSend, notificationController.Send).Methods(http.MethodPost)
	staff.HandleFunc(routes.NotificationResend, notificationController.Resend).Methods(http.MethodPost)

	// Admin only
	admin := router.NewRoute().Subrouter()
	admin.Use(
		middleware.AuthMiddleware(cfg.RSAPublicKey),
		middleware.RequireRoles(userRepo, roleRepo, models.RoleAdmin),
	)

	admin.HandleFunc(routes.AppointmentsPurge, appointmentController.Purge).Methods(http.MethodDelete)
	admin.HandleFunc(routes.PropertyByID, propertyController.Delete).Methods(http.MethodDelete)
	admin.HandleFunc(routes.OffersAll, offerController.ListAll).Methods(http.MethodGet)
	admin.HandleFunc(routes.ReviewByID, reviewController.Delete).Methods(http.MethodDelete)
	admin.HandleFunc(routes.Users, userController.ListAll).Methods(http.MethodGet)
	admin.HandleFunc(routes.UserByID, userController.GetByID).Methods(http.MethodGet)
	admin.HandleFunc(routes.UserByID, userController.Delete).Methods(http.MethodDelete)
	admin.HandleFunc(routes.UserRole, userController.ChangeRole).Methods(http.MethodPut)
	admin.HandleFunc(routes.Roles, userController.ListRoles).Methods(http.MethodGet)

	// Daily reminder tick
	c := cron.New()
	if _, cronErr := c.AddFunc(cfg.ReminderCronSpec, func() {
		if _, e := reminderService.CheckAndSendReminders(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Reminder run failed")
		}
	}); cronErr != nil {
		utils.Logger.WithError(cronErr).Fatal("Failed to schedule reminder cron")
	}
	c.Start()
	defer c.Stop()

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", config.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("backend failed to start:", err)
	}
}
