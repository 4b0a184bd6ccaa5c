package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dreamtrack/dreamtrack/internal/config"
	"github.com/dreamtrack/dreamtrack/internal/db"
	"github.com/dreamtrack/dreamtrack/internal/events"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/service"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB

	Emitter *events.Emitter

	WeekRepository    repository.WeekRepository
	ArchiveRepository repository.ArchiveRepository

	RolloverService   *service.RolloverService
	CompletionService *service.CompletionService
	DreamService      *service.DreamService
	ConnectService    *service.ConnectService
	ScoringService    *service.ScoringService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	store := repository.NewDocumentStore(database)
	dreamRepository := repository.NewDreamRepository(store)
	templateRepository := repository.NewTemplateRepository(store)
	weekRepository := repository.NewWeekRepository(store)
	archiveRepository := repository.NewArchiveRepository(store)
	connectRepository := repository.NewConnectRepository(store)

	// Services
	emitter := events.NewEmitter()
	rolloverService := service.NewRolloverService(
		store,
		weekRepository,
		archiveRepository,
		templateRepository,
		dreamRepository,
		emitter,
	)
	completionService := service.NewCompletionService(
		store,
		weekRepository,
		dreamRepository,
		templateRepository,
		emitter,
	)
	dreamService := service.NewDreamService(store, dreamRepository, templateRepository, emitter)
	connectService := service.NewConnectService(connectRepository)
	scoringService := service.NewScoringService(dreamRepository, connectRepository, archiveRepository)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Emitter:           emitter,
		WeekRepository:    weekRepository,
		ArchiveRepository: archiveRepository,
		RolloverService:   rolloverService,
		CompletionService: completionService,
		DreamService:      dreamService,
		ConnectService:    connectService,
		ScoringService:    scoringService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
