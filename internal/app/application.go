package app

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/fx"

	database "github.com/molspect/imsbase/pkg/ims/adapter/database"
	"github.com/molspect/imsbase/pkg/ims/adapter/database/gorm"
	"github.com/molspect/imsbase/pkg/ims/adapter/database/gorm/mysql"
	"github.com/molspect/imsbase/pkg/ims/adapter/database/gorm/postgres"
	"github.com/molspect/imsbase/pkg/ims/adapter/database/gorm/sqlite"
	storage "github.com/molspect/imsbase/pkg/ims/adapter/storage"
	"github.com/molspect/imsbase/pkg/ims/adapter/storage/gcs"
	"github.com/molspect/imsbase/pkg/ims/adapter/storage/local"
	config "github.com/molspect/imsbase/pkg/ims/core/config"
	"github.com/molspect/imsbase/pkg/ims/export"
	inframetrics "github.com/molspect/imsbase/pkg/ims/infrastructure/metrics"
	sqlrepo "github.com/molspect/imsbase/pkg/ims/infrastructure/repository/sql"
	"github.com/molspect/imsbase/pkg/ims/ingest"
	"github.com/molspect/imsbase/pkg/ims/ledger"
	"github.com/molspect/imsbase/pkg/ims/migration"
	"github.com/molspect/imsbase/pkg/ims/support/util/logger"
	"github.com/molspect/imsbase/pkg/ims/worker"
)

// migrationsPath is the directory inside the embedded filesystem that holds
// the SQL migration files.
const migrationsPath = "resources/migrations"

// DBProviderMap maps adapter names to their DB Provider constructors.
// DBProviderMap is used by main.go to dynamically select providers.
var DBProviderMap = map[string]func(cfg *config.Config) database.DBProvider{
	"postgres": postgres.NewProvider,
	"mysql":    mysql.NewProvider,
	"sqlite":   sqlite.NewProvider,
}

// Command describes the subcommand requested on the command line.
type Command struct {
	Name string
	Args []string
}

// RunApplication sets up and runs the store application using uber-fx.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS, dbProviderOptions []fx.Option, command Command) {
	// Context setting and signal handling moved to main.go

	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level before the Fx container starts emitting events.
	logger.SetLogLevel(cfg.IMSBase.System.Logging.Level)

	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		fx.Options(dbProviderOptions...),
		logger.Module,
		config.Module,
		inframetrics.Module,

		gorm.Module,
		storage.Module,
		local.Module,
		gcs.Module,

		sqlrepo.Module,
		migration.Module,
		ingest.Module,
		ledger.Module,
		worker.Module,
		export.Module,

		fx.Invoke(fx.Annotate(newCommandRunner(command, migrationsFS), fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // migrator *migration.Runner
			"",              // loader *ingest.Loader
			"",              // ledgerService *ledger.Service
			"",              // exporter *export.Exporter
			"",              // pool *worker.Pool
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	// Execute the application
	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// newCommandRunner builds the Fx invoke target that executes the requested
// subcommand once the container has started.
func newCommandRunner(command Command, migrationsFS embed.FS) func(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	migrator *migration.Runner,
	loader *ingest.Loader,
	ledgerService *ledger.Service,
	exporter *export.Exporter,
	pool *worker.Pool,
	appCtx context.Context,
) {
	return func(
		lc fx.Lifecycle,
		shutdowner fx.Shutdowner,
		migrator *migration.Runner,
		loader *ingest.Loader,
		ledgerService *ledger.Service,
		exporter *export.Exporter,
		pool *worker.Pool,
		appCtx context.Context,
	) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					defer func() {
						if r := recover(); r != nil {
							logger.Errorf("Panic recovered in command execution: %v", r)
						}
					}()

					err := executeCommand(appCtx, command, migrationsFS, migrator, loader, ledgerService, exporter)
					if err != nil {
						logger.Errorf("Command '%s' failed: %v", command.Name, err)
						if shutdownErr := shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
							logger.Errorf("Failed to shutdown application: %v", shutdownErr)
						}
						return
					}

					if command.Name == "run" {
						// The worker pool keeps polling until the process is signalled.
						<-appCtx.Done()
						logger.Infof("Shutdown requested. Stopping worker pool...")
					}

					if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
						logger.Errorf("Failed to shutdown application: %v", shutdownErr)
					}
				}()
				return nil
			},
		})
	}
}

// executeCommand dispatches the requested subcommand.
func executeCommand(
	ctx context.Context,
	command Command,
	migrationsFS embed.FS,
	migrator *migration.Runner,
	loader *ingest.Loader,
	ledgerService *ledger.Service,
	exporter *export.Exporter,
) error {
	switch command.Name {
	case "run":
		return migrator.Up(ctx, migrationsFS, migrationsPath)

	case "migrate":
		direction := "up"
		if len(command.Args) > 0 {
			direction = command.Args[0]
		}
		switch direction {
		case "up":
			return migrator.Up(ctx, migrationsFS, migrationsPath)
		case "down":
			return migrator.Down(ctx, migrationsFS, migrationsPath)
		default:
			return fmt.Errorf("unknown migrate direction '%s' (expected 'up' or 'down')", direction)
		}

	case "import":
		if len(command.Args) < 1 {
			return fmt.Errorf("usage: import <table> [file] (reads stdin when no file is given)")
		}
		target, err := ingest.ParseTarget(command.Args[0])
		if err != nil {
			return err
		}
		if err := migrator.Up(ctx, migrationsFS, migrationsPath); err != nil {
			return err
		}

		var src io.Reader = os.Stdin
		if len(command.Args) > 1 && command.Args[1] != "-" {
			f, err := os.Open(command.Args[1])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()
			src = f
		}

		count, err := loader.Load(ctx, target, src)
		if err != nil {
			return err
		}
		logger.Infof("Imported %d records into '%s'.", count, target.TableName())
		return nil

	case "status":
		if len(command.Args) < 1 {
			return fmt.Errorf("usage: status <jobID>")
		}
		jobID, err := strconv.ParseInt(command.Args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job ID '%s': %w", command.Args[0], err)
		}
		snapshot, err := ledgerService.GetStatus(ctx, jobID)
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil

	case "export":
		if len(command.Args) < 1 {
			return fmt.Errorf("usage: export <jobID>")
		}
		jobID, err := strconv.ParseInt(command.Args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job ID '%s': %w", command.Args[0], err)
		}
		objects, err := exporter.ExportJob(ctx, jobID)
		if err != nil {
			return err
		}
		for _, object := range objects {
			logger.Infof("Exported %s", object)
		}
		return nil

	default:
		return fmt.Errorf("unknown command '%s' (expected run, migrate, import, status or export)", command.Name)
	}
}
