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

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/internal/handler"
	"github.com/yourusername/exam-api/internal/middleware"
	pgRepo "github.com/yourusername/exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/pkg/auth"
	"github.com/yourusername/exam-api/pkg/database"
)

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
	categoryRepo := pgRepo.NewCategoryRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	examRepo := pgRepo.NewExamRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	sessionStore, err := redisRepo.NewSessionStore(redisClient, time.Duration(cfg.Auth.StudentSessionTTLMin)*time.Minute)
	if err != nil {
		log.Printf("Failed to initialize SessionStore: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService, sessionStore)
	questionService := service.NewQuestionService(questionRepo, categoryRepo)
	examService := service.NewExamService(examRepo, questionRepo)
	submissionService := service.NewSubmissionService(examRepo, attemptRepo)
	analyticsService := service.NewAnalyticsService(db, examRepo, questionRepo, cacheRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	questionHandler := handler.NewQuestionHandler(questionService)
	examHandler := handler.NewExamHandler(examService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, analyticsService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, submissionService, examService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, authService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

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
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8000", "http://localhost:3000"},
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
		{
			loginLimit := rateLimiter.Limit(middleware.LoginRateLimitConfig())
			authGroup.POST("/register", loginLimit, authHandler.Register)
			authGroup.POST("/login", loginLimit, authHandler.Login)
			authGroup.POST("/student-login", rateLimiter.Limit(middleware.StudentLoginRateLimitConfig()), authHandler.StudentLogin)
			authGroup.POST("/student-logout", authMiddleware.RequireStudent(), authHandler.StudentLogout)
			authGroup.GET("/me", authMiddleware.RequireTeacher(), authHandler.Me)
		}

		// Банк вопросов (только преподаватели)
		questions := api.Group("/questions")
		questions.Use(authMiddleware.RequireTeacher())
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.POST("", questionHandler.CreateQuestion)
			questions.POST("/upload", questionHandler.ImportQuestions)
			questions.GET("/template", questionHandler.DownloadTemplate)

			questionWithID := questions.Group("/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.GET("", questionHandler.GetQuestion)
				questionWithID.PUT("", questionHandler.UpdateQuestion)
				questionWithID.DELETE("", questionHandler.DeleteQuestion)
			}
		}

		// Категории (только преподаватели)
		categories := api.Group("/categories")
		categories.Use(authMiddleware.RequireTeacher())
		{
			categories.GET("", questionHandler.ListCategories)
			categories.POST("", questionHandler.CreateCategory)
		}

		// Тесты (только преподаватели)
		exams := api.Group("/exams")
		exams.Use(authMiddleware.RequireTeacher())
		{
			exams.GET("", examHandler.ListExams)
			exams.POST("", examHandler.CreateExam)

			examWithID := exams.Group("/:id")
			examWithID.Use(middleware.ExtractUintParam("id", "examID"))
			{
				examWithID.GET("", examHandler.GetExam)
				examWithID.PATCH("/status", examHandler.SetExamStatus)
				examWithID.DELETE("", examHandler.DeleteExam)
				examWithID.POST("/questions", examHandler.AddExamQuestions)
				examWithID.PUT("/questions", examHandler.ReplaceExamQuestions)
				examWithID.DELETE("/questions", examHandler.RemoveExamQuestions)
				examWithID.PATCH("/scores", examHandler.SetExamQuestionScores)
				examWithID.GET("/attempts", submissionHandler.ListExamAttempts)
				examWithID.GET("/statistics", analyticsHandler.GetExamStatistics)
				examWithID.GET("/results/export", analyticsHandler.ExportExamResults)
			}
		}

		// Попытки (только преподаватели)
		attempts := api.Group("/attempts")
		attempts.Use(authMiddleware.RequireTeacher())
		{
			attemptWithID := attempts.Group("/:id")
			attemptWithID.Use(middleware.ExtractUintParam("id", "attemptID"))
			{
				attemptWithID.GET("", submissionHandler.GetAttempt)
			}
		}

		// Аналитика (только преподаватели)
		analytics := api.Group("/analytics")
		analytics.Use(authMiddleware.RequireTeacher())
		{
			analytics.GET("/overview", analyticsHandler.GetOverview)
			analytics.GET("/students/:name", analyticsHandler.GetStudentPerformance)
		}

		// Маршруты студентов
		student := api.Group("/student")
		student.Use(authMiddleware.RequireStudent())
		{
			student.GET("/exams", examHandler.ListActiveExams)
			student.GET("/attempts", submissionHandler.ListMyAttempts)

			studentExam := student.Group("/exams/:id")
			studentExam.Use(middleware.ExtractUintParam("id", "examID"))
			{
				studentExam.GET("/paper", examHandler.GetExamPaper)
				studentExam.POST("/submit", submissionHandler.Submit)
			}
		}
	}

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

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
