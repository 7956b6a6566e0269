package api

import (
	"context"
	"fmt"

	"github.com/brpaz/echozap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/errors"
	"github.com/glucolog-org/coach/logger"
	"github.com/glucolog-org/coach/store"
	"github.com/glucolog-org/coach/uploads"
)

func Start(e *echo.Echo, cfg *config.Config, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.HttpPort)); err != nil {
					fmt.Println(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func SetReady(healthCheck *HealthCheck, db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Client().Ping(ctx, nil); err != nil {
				return err
			}

			// It's important this is set after mongo is initialized, which is ensured
			// by taking a dependency on mongo in the constructor, because lifecycle hooks
			// are executed in topological order
			healthCheck.SetReady(true)
			return nil
		},
		OnStop: nil,
	})
}

func NewServer(handler *Handler, healthCheck *HealthCheck, zapLogger *zap.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	// Skip request logging for the readiness probe
	skipper := RouteSkipper([]string{"/ready"})

	e.Use(middleware.Recover())
	e.Use(SkipMiddleware(skipper, echozap.ZapLogger(zapLogger)))

	e.HTTPErrorHandler = errors.CustomHTTPErrorHandler

	e.GET("/ready", healthCheck.Ready)
	RegisterHandlers(e, handler)

	return e, nil
}

// RegisterHandlers binds every route to the handler.
func RegisterHandlers(e *echo.Echo, handler *Handler) {
	v1 := e.Group("/v1")
	v1.POST("/uploads", handler.CreateUpload)
	v1.GET("/uploads", handler.ListUploads)
	v1.GET("/uploads/:uploadId", withUploadId(handler.GetUpload))
	v1.DELETE("/uploads/:uploadId", withUploadId(handler.DeleteUpload))
	v1.GET("/uploads/:uploadId/metrics", withUploadId(handler.GetUploadMetrics))
	v1.POST("/uploads/:uploadId/doses", withUploadId(handler.SuggestDose))
	v1.GET("/uploads/:uploadId/report.xlsx", withUploadId(handler.DownloadReport))
}

func withUploadId(fn func(ctx echo.Context, uploadId string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return fn(ctx, ctx.Param("uploadId"))
	}
}

// Dependencies is the service DI graph, shared with the coach CLI.
func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			logger.NewProductionLogger,
			logger.Suggar,
			config.NewFromEnv,
			store.NewConfig,
			store.NewClient,
			store.NewDatabase,
			uploads.NewRepository,
			uploads.NewReportCodeGenerator,
			uploads.NewService,
			NewHealthCheck,
			NewHandler,
			NewServer,
		),
	}
}

func MainLoop() {
	options := append(
		Dependencies(),
		fx.Invoke(SetReady),
		fx.Invoke(Start),
	)
	fx.New(options...).Run()
}
