package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"snackstack/internal/http/handlers"
	applog "snackstack/internal/log"
	"snackstack/internal/repos"
)

const (
	shutdownGrace = 5 * time.Second
	sweepEvery    = time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API and nudge engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = a.cfg.Port
			}
			return serve(cmd.Context(), a, port)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides port)")
	return cmd
}

func serve(ctx context.Context, a *app, port string) error {
	cfg := a.cfg

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	fapp := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})
	// Global body size guard
	fapp.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	fapp.Use(requestid.New())
	fapp.Use(logger.New())
	fapp.Use(helmet.New())
	fapp.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		// pointer and hover streams have their own budget
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/nudges/events"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	deps := handlers.NewDeps(db, cfg)
	handlers.Register(fapp, deps, handlers.DefaultLimits())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go deps.Engine.RunJanitor(ctx, sweepEvery)

	errc := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on :%s", port)
		errc <- fapp.Listen(":" + port)
	}()

	select {
	case err := <-errc:
		deps.Engine.CloseAll()
		return err
	case <-ctx.Done():
	}

	applog.Info(nil, "server.shutdown", map[string]any{"sessions": deps.Engine.Len()})
	deps.Engine.CloseAll()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return fapp.ShutdownWithContext(sctx)
}
