/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
	"github.com/humaidq/intake/db"
	"github.com/humaidq/intake/routes"
	"github.com/humaidq/intake/static"
	"github.com/humaidq/intake/templates"
	"github.com/humaidq/intake/upload"
)

const shutdownTimeout = 10 * time.Second

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Sources: cli.EnvVars("PORT"),
			Usage:   "the web server port",
		},
		&cli.StringFlag{
			Name:    "database-url",
			Sources: cli.EnvVars("DATABASE_URL"),
			Usage:   "PostgreSQL connection string for persistent sessions (in-memory when empty)",
		},
		&cli.StringFlag{
			Name:    "csrf-secret",
			Sources: cli.EnvVars("CSRF_SECRET"),
			Usage:   "secret used to sign CSRF tokens",
		},
		&cli.IntFlag{
			Name:    "dashboard-limit",
			Value:   api.MaxRecordLimit,
			Sources: cli.EnvVars("DASHBOARD_LIMIT"),
			Usage:   "number of records the dashboard loads",
		},
		&cli.BoolFlag{
			Name:  "dev",
			Value: false,
			Usage: "enables development mode (for templates)",
		},
	}, apiFlags()...),
	Action: start,
}

func start(ctx context.Context, cmd *cli.Command) (err error) {
	csrfSecret := cmd.String("csrf-secret")
	if csrfSecret == "" {
		return errCSRFSecretRequired
	}

	client, closeCache, err := newAPIClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeCache()

	sessionOpts, err := sessionOptions(ctx, cmd.String("database-url"))
	if err != nil {
		return err
	}

	if sessionOpts.Initer != nil {
		defer db.Close()
	}

	if cmd.Bool("dev") {
		flamego.SetEnv(flamego.EnvTypeDev)
	} else {
		flamego.SetEnv(flamego.EnvTypeProd)
	}

	limit := int(cmd.Int("dashboard-limit"))

	f, err := newWebApp(webConfig{
		CSRFSecret: csrfSecret,
		Session:    sessionOpts,
		Backend:    client,
		Loader:     dashboard.NewLoader(client, api.RecordQuery{Limit: limit}),
		Uploads:    upload.NewService(client, upload.DefaultPendingTTL),
	})
	if err != nil {
		return err
	}

	port := cmd.String("port")

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", port),
		Handler:           f,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ErrorLog:          requestStdLogger,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		appLogger.Info("Starting web server", "port", port, "api", client.BaseURL(), "dashboard_limit", limit)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// sessionOptions stores sessions in PostgreSQL when a database URL is set
// and in memory otherwise.
func sessionOptions(ctx context.Context, databaseURL string) (session.Options, error) {
	if databaseURL == "" {
		appLogger.Info("No database configured, sessions are kept in memory")
		return session.Options{}, nil
	}

	appLogger.Info("Connecting to database")

	if err := db.Init(ctx, databaseURL); err != nil {
		return session.Options{}, fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Syncing database schema")

	if err := db.SyncSchema(ctx); err != nil {
		db.Close()
		return session.Options{}, fmt.Errorf("failed to sync schema: %w", err)
	}

	return session.Options{
		Initer: db.PostgresSessionIniter(),
		Config: db.PostgresSessionConfig{},
	}, nil
}

type webConfig struct {
	CSRFSecret string
	Session    session.Options
	Backend    routes.Backend
	Loader     *dashboard.Loader
	Uploads    *upload.Service
}

func newWebApp(cfg webConfig) (*flamego.Flame, error) {
	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(session.Sessioner(cfg.Session))
	f.Use(routes.RequestLogger)
	f.Use(csrf.Csrfer(csrf.Options{Secret: cfg.CSRFSecret}))
	f.Use(template.Templater(template.Options{
		FileSystem: fs,
		FuncMaps:   []htmltemplate.FuncMap{routes.TemplateFuncs()},
	}))
	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
	}))
	f.Use(routes.NoCacheHeaders())
	f.Use(routes.CSRFInjector())
	f.Use(routes.FlashInjector())

	f.MapTo(cfg.Backend, (*routes.Backend)(nil))
	f.Map(cfg.Loader)
	f.Map(cfg.Uploads)

	f.Get("/healthz", routes.Healthz)

	f.Get("/", routes.IntakeForm)
	f.Group("/intake", func() {
		f.Post("/next", routes.IntakeNext)
		f.Post("/back", routes.IntakeBack)
		f.Post("/submit", routes.IntakeSubmit)
		f.Post("/reset", routes.IntakeReset)
	}, csrf.Validate)
	f.Get("/confirmation", routes.Confirmation)
	f.Get("/assessment", routes.AssessmentLookup)
	f.Get("/assessment/{id}", routes.ViewAssessment)

	f.Group("/dashboard", func() {
		f.Get("", routes.Dashboard)
		f.Get("/report.pdf", routes.DashboardReportPDF)
		f.Get("/records.xlsx", routes.DashboardRecordsXLSX)
		f.Post("/upload", routes.UploadBodyLimit(), csrf.Validate, routes.UploadDataset)
		f.Post("/upload/retry", csrf.Validate, routes.RetryUpload)
		f.Post("/upload/discard", csrf.Validate, routes.DiscardUpload)
	})
	f.Get("/analysis", routes.Analysis)

	configureEmptyNotFoundHandler(f)

	return f, nil
}

func configureEmptyNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
	})
}
