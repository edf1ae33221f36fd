package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"service-pipeline/middleware/admission/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// StatsRow é a linha persistida por PostgresStatsStore.
type StatsRow struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Source  string    `gorm:"size:32;index"`
	Key     string    `gorm:"size:255"`
	Allowed bool      `gorm:"index"`
	Reason  string    `gorm:"size:64"`
	Method  string    `gorm:"size:16"`
	Path    string    `gorm:"size:2048"`
	At      time.Time `gorm:"index"`
}

func (StatsRow) TableName() string { return "admission_events" }

func toStatsRow(ev domain.StatsEvent) StatsRow {
	id := ev.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return StatsRow{
		ID:      id,
		Source:  ev.Source,
		Key:     string(ev.Key),
		Allowed: ev.Allowed,
		Reason:  ev.Reason,
		Method:  ev.Method,
		Path:    ev.Path,
		At:      at.UTC(),
	}
}

// PostgresStatsStore grava um registro por decisão na tabela admission_events.
type PostgresStatsStore struct {
	db *gorm.DB
}

var _ domain.StatsStore = (*PostgresStatsStore)(nil)

func NewPostgresStatsStore(db *gorm.DB) *PostgresStatsStore {
	return &PostgresStatsStore{db: db}
}

// Migrate cria/atualiza a tabela de eventos.
func (s *PostgresStatsStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&StatsRow{})
}

func (s *PostgresStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	row := toStatsRow(ev)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert admission event: %w", err)
	}
	return nil
}

// OpenPostgres abre a conexão GORM e confirma com ping.
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
