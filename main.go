package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "tempmail-backend/cmd/api"
	authdomain "tempmail-backend/internal/auth/domain"
	authRepo "tempmail-backend/internal/auth/repository"
	authUsecase "tempmail-backend/internal/auth/usecase"
	emaildomain "tempmail-backend/internal/email/domain"
	emailRepo "tempmail-backend/internal/email/repository"
	"tempmail-backend/internal/email/scheduler"
	emailUsecase "tempmail-backend/internal/email/usecase"
	"tempmail-backend/pkg/config"
	"tempmail-backend/pkg/database"
	"tempmail-backend/pkg/gmail"
	"tempmail-backend/pkg/logger"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg           *config.Config
	db            *gorm.DB
	readStateRepo emailRepo.ReadStateRepository
	authUsecase   authUsecase.AuthUsecase
	emailUsecase  emailUsecase.EmailUsecase
	setupUsecase  emailUsecase.SetupUsecase
	recentUsecase emailUsecase.RecentUsecase
}

func newApp() (*app, error) {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&emaildomain.GmailConfig{},
		&emaildomain.ReadState{},
		&emaildomain.RecentInbox{},
		&emaildomain.OAuthState{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	userRepo := authRepo.NewUserRepository(db)
	gmailConfigRepo := emailRepo.NewGmailConfigRepository(db)
	readStateRepo := emailRepo.NewReadStateRepository(db)
	recentRepo := emailRepo.NewRecentInboxRepository(db)

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set, Gmail setup will fail")
	}
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	return &app{
		cfg:           cfg,
		db:            db,
		readStateRepo: readStateRepo,
		authUsecase:   authUsecase.NewAuthUsecase(userRepo, cfg),
		emailUsecase: emailUsecase.NewEmailUsecase(
			gmailConfigRepo,
			readStateRepo,
			emailUsecase.NewGmailProvider(gmailService),
			emailUsecase.NewPipelineConfig(cfg),
		),
		setupUsecase:  emailUsecase.NewSetupUsecase(gmailConfigRepo, emailRepo.NewOAuthStateRepository(db), gmailService),
		recentUsecase: emailUsecase.NewRecentUsecase(recentRepo),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "tempmail-backend",
		Usage:  "Disposable inbox backend over a catch-all Gmail account",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveAction,
			},
			{
				Name:  "fetch",
				Usage: "Print the emails of one inbox as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "inbox", Aliases: []string{"i"}, Usage: "Inbox name (local part)", Required: true},
					&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Inbox domain", Required: true},
					&cli.IntFlag{Name: "max", Aliases: []string{"n"}, Usage: "Maximum emails to return", Value: emailUsecase.DefaultMaxResults},
					&cli.BoolFlag{Name: "exclude-expired", Usage: "Hide emails older than EMAIL_EXPIRY_HOURS"},
				},
				Action: fetchAction,
			},
			{
				Name:   "gmail-auth-url",
				Usage:  "Print the Google consent URL used to connect the catch-all account",
				Action: authURLAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := scheduler.NewReadStateCleanupScheduler(a.readStateRepo, a.cfg.ReadStateRetention, a.cfg.CleanupInterval)
	cleanup.Start()
	defer cleanup.Stop()

	handler := api.NewHandler(a.authUsecase, a.emailUsecase, a.setupUsecase, a.recentUsecase, a.cfg)
	return handler.Start(ctx, ":"+a.cfg.Port)
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	emails, err := a.emailUsecase.FetchEmails(ctx, emailUsecase.FetchOptions{
		InboxName:      cmd.String("inbox"),
		Domain:         cmd.String("domain"),
		MaxResults:     int(cmd.Int("max")),
		ExcludeExpired: cmd.Bool("exclude-expired"),
	})
	if err != nil {
		if emaildomain.NeedsSetup(err) {
			return errors.New("gmail is not connected, run `tempmail-backend gmail-auth-url` and complete setup")
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(emails)
}

func authURLAction(ctx context.Context, _ *cli.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	authURL, _, err := a.setupUsecase.BeginSetup(ctx, "cli")
	if err != nil {
		return err
	}
	fmt.Println(authURL)
	return nil
}
