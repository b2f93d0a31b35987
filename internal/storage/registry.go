// Package storage owns the per-guild embedded stores. Every guild gets its
// own SQLite file so one community's data never mingles with another's, and
// the single-writer model keeps the uniqueness checks honest.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dutytrack/dutytrack/db/migrations"
	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/audit"
	auditStorage "github.com/dutytrack/dutytrack/internal/audit/storage"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	actionStorage "github.com/dutytrack/dutytrack/internal/deptaction/storage"
	"github.com/dutytrack/dutytrack/internal/quotacycle"
	cycleStorage "github.com/dutytrack/dutytrack/internal/quotacycle/storage"
	"github.com/dutytrack/dutytrack/internal/shift"
	shiftStorage "github.com/dutytrack/dutytrack/internal/shift/storage"
)

type Registry struct {
	cfg    *internal.Config
	logger *slog.Logger

	mu  sync.Mutex
	dbs map[string]*gorm.DB
}

func NewRegistry(cfg *internal.Config, logger *slog.Logger) (*Registry, error) {
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetTableName("schema_migrations")

	return &Registry{
		cfg:    cfg,
		logger: logger,
		dbs:    make(map[string]*gorm.DB),
	}, nil
}

// DB returns the guild's store, opening and migrating it on first use.
// Guilds absent from configuration are rejected.
func (r *Registry) DB(guildID string) (*gorm.DB, error) {
	if _, err := r.cfg.Guild(guildID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.dbs[guildID]; ok {
		return db, nil
	}

	path := filepath.Join(r.cfg.Storage.Dir, guildID+".db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open guild store %s: %w", guildID, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap guild store %s: %w", guildID, err)
	}
	// SQLite serializes writers; a single connection avoids busy errors
	// between the uniqueness transactions.
	sqlDB.SetMaxOpenConns(1)

	if err := goose.Up(sqlDB, "."); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate guild store %s: %w", guildID, err)
	}

	r.logger.Info("opened guild store",
		slog.String("guild_id", guildID),
		slog.String("path", path))

	r.dbs[guildID] = db
	return db, nil
}

// Open eagerly opens every configured guild store, so migration problems
// surface at startup instead of on the first command.
func (r *Registry) Open() error {
	for _, guildID := range r.cfg.GuildIDs() {
		if _, err := r.DB(guildID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for guildID, db := range r.dbs {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close guild store %s: %w", guildID, err)
		}
		delete(r.dbs, guildID)
	}
	return firstErr
}

type shiftProvider struct{ registry *Registry }

func (p *shiftProvider) ForGuild(guildID string) (shift.Repository, error) {
	db, err := p.registry.DB(guildID)
	if err != nil {
		return nil, err
	}
	return shiftStorage.NewShiftRepository(db), nil
}

func (r *Registry) ShiftRepos() shift.Provider {
	return &shiftProvider{registry: r}
}

type cycleProvider struct{ registry *Registry }

func (p *cycleProvider) ForGuild(guildID string) (quotacycle.Repository, error) {
	db, err := p.registry.DB(guildID)
	if err != nil {
		return nil, err
	}
	return cycleStorage.NewCycleRepository(db), nil
}

func (r *Registry) CycleRepos() quotacycle.Provider {
	return &cycleProvider{registry: r}
}

type actionProvider struct{ registry *Registry }

func (p *actionProvider) ForGuild(guildID string) (deptaction.Repository, error) {
	db, err := p.registry.DB(guildID)
	if err != nil {
		return nil, err
	}
	return actionStorage.NewActionRepository(db), nil
}

func (r *Registry) ActionRepos() deptaction.Provider {
	return &actionProvider{registry: r}
}

type auditProvider struct{ registry *Registry }

func (p *auditProvider) ForGuild(guildID string) (audit.Repository, error) {
	db, err := p.registry.DB(guildID)
	if err != nil {
		return nil, err
	}
	return auditStorage.NewAuditRepository(db), nil
}

func (r *Registry) AuditRepos() audit.Provider {
	return &auditProvider{registry: r}
}
