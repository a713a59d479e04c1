// @title carford API
// @version 1.0
// @description Owners and their cars, behind bearer-token authentication.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/axdbertuol/carford/auth"
	"github.com/axdbertuol/carford/cars"
	"github.com/axdbertuol/carford/config"
	"github.com/axdbertuol/carford/db"
	"github.com/axdbertuol/carford/logging"
	"github.com/axdbertuol/carford/metrics"
	"github.com/axdbertuol/carford/owners"
	"github.com/axdbertuol/carford/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	app := &cli.App{
		Name:  "carford",
		Usage: "owners and cars API",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving", EnvVars: []string{"MIGRATE_ON_START"}},
				},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateAction(db.Up)},
					{Name: "down", Usage: "roll back all migrations", Action: migrateAction(db.Down)},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads configuration and installs the global logger.
func setup() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func migrateAction(dir db.Direction) cli.ActionFunc {
	return func(*cli.Context) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return db.RunMigrations(cfg.Database.DSN(), dir)
	}
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if c.Bool("migrate") {
		if err := db.RunMigrations(cfg.Database.DSN(), db.Up); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenDuration)
	authService := auth.NewService(auth.NewStore(conn), tokens, logger.Named("auth"))

	carRepo := cars.NewRepository()
	carService := cars.NewService(conn, carRepo, logger.Named("cars"))
	ownerService := owners.NewService(conn, owners.NewRepository(carRepo), logger.Named("owners"))

	router := server.NewRouter(server.Deps{
		Config:  cfg.Server,
		Logger:  logger,
		Metrics: metrics.New(),
		DB:      conn,
		Tokens:  tokens,
		Auth:    auth.NewHandlers(authService),
		Owners:  owners.NewHandlers(ownerService),
		Cars:    cars.NewHandlers(carService),
	})

	srv := server.New(fmt.Sprintf(":%s", cfg.Server.Port), router, cfg.Server.RequestTimeout)
	return server.Run(ctx, srv, logger)
}
