package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/directory"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/notify"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

const shutdownGrace = 5 * time.Second

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "service-auth",
		Short:         "Account and directory HTTP service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes for the configured store",
		RunE:  runMigrate,
	}
}

// bootstrap loads .env, config and the logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	// best-effort: a missing .env falls back to the real environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		return config.Config{}, nil, oops.Code("LOGGER_INIT_FAILED").Wrap(err)
	}
	return cfg, lg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := openStores(ctx, cfg, utilities.NewIDGenerator(cfg.SnowflakeNode), sugar)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("driver", cfg.StoreDriver).Wrap(err)
	}
	defer st.close(context.Background())

	if err := st.migrate(ctx); err != nil {
		return oops.Code("MIGRATION_FAILED").With("driver", cfg.StoreDriver).Wrap(err)
	}
	sugar.Infow("migrations completed", "driver", cfg.StoreDriver)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-auth", "version", version, "driver", cfg.StoreDriver)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := utilities.NewIDGenerator(cfg.SnowflakeNode)
	st, err := openStores(ctx, cfg, ids, sugar)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("driver", cfg.StoreDriver).Wrap(err)
	}
	if err := st.migrate(ctx); err != nil {
		_ = st.close(context.Background())
		return oops.Code("MIGRATION_FAILED").With("driver", cfg.StoreDriver).Wrap(err)
	}

	transport, err := notify.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	if err != nil {
		_ = st.close(context.Background())
		return err
	}
	mailer, err := notify.NewMailer(transport, cfg.SMTPEmail)
	if err != nil {
		_ = st.close(context.Background())
		return oops.Code("CONFIG_INVALID").With("key", "SMTP_EMAIL").Wrap(err)
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userSvc := user.NewUserService(st.users, user.BcryptHasher{}, issuer, mailer, sugar.Named("user"))
	dirSvc := directory.NewService(st.directory)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := router.RegisterRoutes(sugar.Named("http"), router.Options{
		Users:          user.NewHandler(userSvc, issuer, sugar.Named("user")),
		Directory:      directory.NewHandler(dirSvc, sugar.Named("directory")),
		Registry:       reg,
		RequestTimeout: cfg.RequestTimeout,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + shutdownGrace,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		sugar.Info("shutting down")
	case serveErr = <-errCh:
		sugar.Errorw("http server failed", "err", serveErr)
	}

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := st.ping(doneCtx); err != nil {
		sugar.Warnf("store ping on shutdown failed: %v", err)
	}
	if err := st.close(doneCtx); err != nil {
		sugar.Warnf("store close failed: %v", err)
	}

	sugar.Info("goodbye")
	if serveErr != nil {
		return oops.Code("HTTP_SERVE_FAILED").With("addr", cfg.HTTPAddr).Wrap(serveErr)
	}
	return nil
}
