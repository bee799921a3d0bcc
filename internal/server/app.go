// Package server initializes and runs the application server: storage,
// migrations, external collaborators (payment gateway, mail), the service
// layer, and the HTTP endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/imagifine/internal/logging"
	"github.com/dmitrijs2005/imagifine/internal/server/config"
	"github.com/dmitrijs2005/imagifine/internal/server/gateway"
	"github.com/dmitrijs2005/imagifine/internal/server/httpapi"
	"github.com/dmitrijs2005/imagifine/internal/server/mail"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagifine/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	creditService  *services.CreditService
	contactService *services.ContactService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	gw := gateway.NewRazorpayClient(c.GatewayBaseURL, c.GatewayKeyID, c.GatewayKeySecret, c.GatewayTimeout)
	sender := mail.NewSMTPSender(c.SMTPAddr, c.SMTPUser, c.SMTPPassword, c.MailFrom, c.AdminEmail)

	us := services.NewUserService(db, rm, sender, c)
	cs := services.NewCreditService(db, rm, gw, c.GatewayKeySecret, logger)
	ct := services.NewContactService(db, rm, sender, logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    us,
		creditService:  cs,
		contactService: ct,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config, app.logger, app.userService, app.creditService, app.contactService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
