package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/charter-api/internal/config"
	"github.com/yourusername/charter-api/internal/handler"
	"github.com/yourusername/charter-api/internal/middleware"
	"github.com/yourusername/charter-api/internal/pdf"
	"github.com/yourusername/charter-api/internal/repository/memory"
	pgRepo "github.com/yourusername/charter-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/charter-api/internal/repository/redis"
	"github.com/yourusername/charter-api/internal/service"
	ws "github.com/yourusername/charter-api/internal/websocket"
	"github.com/yourusername/charter-api/pkg/auth"
	"github.com/yourusername/charter-api/pkg/database"
)

// refreshTokenCleanupInterval — период удаления просроченных refresh-токенов
const refreshTokenCleanupInterval = 12 * time.Hour

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	flightRepo := pgRepo.NewFlightRepo(db)
	bookingRepo := pgRepo.NewBookingRepo(db)

	refreshTokenRepo, err := pgRepo.NewRefreshTokenRepo(db)
	if err != nil {
		log.Printf("Failed to initialize RefreshTokenRepo: %v", err)
		os.Exit(1)
	}

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Хранилище одноразовых кодов входа живёт в памяти процесса: коды
	// короткоживущие, и при рестарте персонал просто запросит новый код
	twoFactorStore := memory.NewTwoFactorStore()

	// Канал доставки кодов
	notifier, err := buildNotifier(cfg.Email)
	if err != nil {
		log.Printf("Failed to initialize notifier: %v", err)
		os.Exit(1)
	}

	// Сервис JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Контекст, завершаемый при остановке сервера, для фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Сервисы
	twoFactorService, err := service.NewTwoFactorService(
		twoFactorStore,
		notifier,
		time.Duration(cfg.Auth.TwoFactorTTLMinutes)*time.Minute,
		cfg.Auth.TwoFactorMaxAttempts,
		time.Duration(cfg.Auth.TwoFactorPurgeMinutes)*time.Minute,
	)
	if err != nil {
		log.Printf("Failed to initialize TwoFactorService: %v", err)
		os.Exit(1)
	}
	go twoFactorService.RunPurgeLoop(ctx)

	authService, err := service.NewAuthService(
		userRepo,
		refreshTokenRepo,
		jwtService,
		twoFactorService,
		time.Duration(cfg.Auth.RefreshTokenLifetimeDays)*24*time.Hour,
		time.Duration(cfg.Auth.TwoFactorResendSeconds)*time.Second,
	)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}

	// Периодическая чистка просроченных refresh-токенов
	go func() {
		ticker := time.NewTicker(refreshTokenCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed, err := authService.CleanupExpiredTokens(); err != nil {
					log.Printf("Ошибка очистки refresh-токенов: %v", err)
				} else if removed > 0 {
					log.Printf("Очистка удалила %d просроченных refresh-токенов", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	userService := service.NewUserService(userRepo)

	flightService, err := service.NewFlightService(flightRepo, cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize FlightService: %v", err)
		os.Exit(1)
	}

	eligibilityService := service.NewEligibilityService()

	// WebSocket хаб для дашборда персонала
	hub := ws.NewHub()
	go hub.Run()
	wsManager := ws.NewManager(hub)

	bookingService, err := service.NewBookingService(bookingRepo, flightRepo, userRepo, eligibilityService, wsManager)
	if err != nil {
		log.Printf("Failed to initialize BookingService: %v", err)
		os.Exit(1)
	}

	// Обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	flightHandler := handler.NewFlightHandler(flightService)
	bookingHandler := handler.NewBookingHandler(bookingService, pdf.NewConfirmationGenerator("Charter API"))
	reportHandler := handler.NewReportHandler(bookingService)

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	wsHandler := handler.NewWSHandler(hub, allowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := os.Getenv("GIN_MODE") == "release"

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)
			authGroup.POST("/2fa/verify", strict, authHandler.VerifyCode)
			authGroup.POST("/2fa/resend", strict, authHandler.ResendCode)
			authGroup.GET("/2fa/status", authHandler.CodeStatus)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.POST("/logout", authHandler.Logout)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/logout-all", authHandler.LogoutAll)
			}
		}

		// Профиль текущего пользователя
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.UpdateMe)
			users.POST("/me/change-password", userHandler.ChangePassword)
		}

		// Рейсы: поиск и карточка — публичные, управление — персонал
		flights := api.Group("/flights")
		{
			flights.GET("", flightHandler.Search)

			flightWithID := flights.Group("/:id")
			flightWithID.Use(middleware.ExtractUintParam("id", "flight_id"))
			{
				flightWithID.GET("", flightHandler.GetFlight)

				staffFlights := flightWithID.Group("")
				staffFlights.Use(authMiddleware.RequireAuth(), authMiddleware.StaffOnly())
				{
					staffFlights.PUT("", flightHandler.UpdateFlight)
					staffFlights.PUT("/status", flightHandler.UpdateFlightStatus)
					staffFlights.GET("/bookings", bookingHandler.ListFlightBookings)
				}
			}

			staffCreate := flights.Group("")
			staffCreate.Use(authMiddleware.RequireAuth(), authMiddleware.StaffOnly())
			{
				staffCreate.POST("", flightHandler.CreateFlight)
			}
		}

		// Бронирования
		bookings := api.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)

			bookingWithID := bookings.Group("/:id")
			bookingWithID.Use(middleware.ExtractUintParam("id", "booking_id"))
			{
				bookingWithID.GET("", bookingHandler.GetBooking)
				bookingWithID.POST("/cancel", bookingHandler.CancelBooking)
				bookingWithID.GET("/confirmation.pdf", bookingHandler.DownloadConfirmation)

				staffBookings := bookingWithID.Group("")
				staffBookings.Use(authMiddleware.StaffOnly())
				{
					staffBookings.POST("/confirm", bookingHandler.ConfirmBooking)
				}
			}
		}

		// Администрирование: пользователи, модерация, членство, отчёты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.StaffOnly())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.GET("/users/pending", userHandler.ListPendingProfiles)

			adminUser := admin.Group("/users/:id")
			adminUser.Use(middleware.ExtractUintParam("id", "target_user_id"))
			{
				adminUser.GET("", userHandler.GetUser)
				adminUser.PUT("/profile-status", userHandler.SetProfileStatus)

				// Назначение членства — только администратор
				adminOnly := adminUser.Group("")
				adminOnly.Use(authMiddleware.AdminOnly())
				{
					adminOnly.PUT("/membership", userHandler.SetMembership)
				}
			}

			admin.GET("/reports/bookings.xlsx", reportHandler.ExportBookings)
		}
	}

	// WebSocket маршрут дашборда персонала
	router.GET("/ws", authMiddleware.RequireAuth(), authMiddleware.StaffOnly(), wsHandler.Dashboard)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Отправляем сигнал завершения для всех горутин
	cancel()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}

// buildNotifier выбирает канал доставки кодов по конфигурации
func buildNotifier(cfg config.EmailConfig) (service.Notifier, error) {
	switch cfg.Provider {
	case "resend":
		return service.NewResendNotifier(cfg.ResendAPIKey, cfg.From)
	case "smtp":
		return service.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	default:
		log.Println("Email provider 'noop': коды входа будут только в логах")
		return service.NewNoopNotifier(), nil
	}
}
