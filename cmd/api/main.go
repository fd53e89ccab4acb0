package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/attendly-hq/attendance-backend-go/internal/config"
	appHTTP "github.com/attendly-hq/attendance-backend-go/internal/handler/http"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/database"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/email"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/attendly-hq/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendly-hq/attendance-backend-go/internal/service/attendance"
	authService "github.com/attendly-hq/attendance-backend-go/internal/service/auth"
	userService "github.com/attendly-hq/attendance-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	authSvc := authService.NewAuthService(userRepo, jwtService, emailService, cfg.App.FrontendURL)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo)
	userSvc := userService.NewUserService(userRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	userHandler := appHTTP.NewUserHandler(userSvc)
	qrHandler := appHTTP.NewQRHandler()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		FrontendURL: cfg.App.FrontendURL,
		Env:         cfg.App.Env,
	}, jwtService, authHandler, attendanceHandler, userHandler, qrHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Starting server on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server error:", err)
	}
}
