package main

import (
	"context"
	"log/slog"
	"os"

	"warden/config"
	"warden/internal/delivery"
	"warden/internal/delivery/http"
	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/router/handler"
	"warden/internal/delivery/worker"
	workerhandler "warden/internal/delivery/worker/handler"
	"warden/internal/domain/lifecycle"
	"warden/internal/domain/service"
	"warden/internal/infra/auth"
	logs "warden/internal/infra/log"
	"warden/internal/infra/metrics"
	"warden/internal/infra/persistence"
	"warden/internal/infra/pubsub"
	"warden/internal/usecase"
	"warden/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			bootstrapAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		persistence.Module,
		metrics.Module,
		pubsub.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			tokenIssuer,
			tokenVerifier,
		),
	)
}

// The JWT service plays both roles; consumers depend on the narrower one they need.
func tokenIssuer(tokens service.TokenService) service.TokenIssuer { return tokens }

func tokenVerifier(tokens service.TokenService) service.TokenVerifier { return tokens }

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			usecase.NewValidator,
			impl.NewAccountService,
			impl.NewItemService,
			impl.NewAccessGuard,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAccountHandler,
			handler.NewItemHandler,
			workerhandler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// bootstrapAdmin seeds the configured administrator once storage is reachable.
func bootstrapAdmin(lc fx.Lifecycle, cfg *config.Config, accounts usecase.AccountUsecase, logger *slog.Logger) {
	admin := cfg.Auth.BootstrapAdmin
	if admin == nil || admin.Email == "" {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			account, err := accounts.EnsureAdmin(ctx, usecase.BootstrapAdminInput{
				Email:       admin.Email,
				DisplayName: admin.DisplayName,
				Password:    admin.Password,
			})
			if err != nil {
				return errors.Wrap(err, "failed to bootstrap admin account")
			}
			logger.Info("Bootstrap admin ready", slog.String("account_id", account.ID.String()))

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
