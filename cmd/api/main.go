package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	app.IndexWorker.Start(ctx)

	server := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 30*time.Second,
		// a batch upload carries several files
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 10,
		ErrorHandler: handlers.ErrorHandler,
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Disposition",
	}))
	server.Use(handlers.RequestTimeout(cfg.Server.RequestTimeout))

	handlers.Register(server, handlers.Handlers{
		Upload: handlers.NewUploadHandler(app.Ingest, cfg.Storage.MaxFileSize),
		Resume: handlers.NewResumeHandler(app.Repo, app.Collection, app.Resumes),
		Search: handlers.NewSearchHandler(app.Search),
		Match:  handlers.NewMatchHandler(app.Resumes, app.Collection, app.Parser),
		Export: handlers.NewExportHandler(app.Collection),
		File:   handlers.NewFileHandler(app.Storage),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr), zap.String("public_url", cfg.Server.PublicBaseURL))

	if err := server.Listen(addr); err != nil {
		zlog.Error("failed to start server", zap.Error(err))
	}
}
