// Package store 는 말뭉치 문서와 포스팅을 관계형 DB(SQLite 또는 PostgreSQL)에 보관한다.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/search"
)

// ErrUnsupportedDriver 는 지원하지 않는 DB 드라이버 오류다.
var ErrUnsupportedDriver = errors.New("unsupported index driver")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	batchSize = 500
)

// Store: 색인 저장소입니다. search.Loader 를 구현합니다.
type Store struct {
	db     *gorm.DB
	driver string
	logger *slog.Logger
}

// Open 은 드라이버에 맞게 연결하고 스키마를 마이그레이션한다.
func Open(ctx context.Context, cfg config.IndexConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s index db: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite 는 단일 쓰기 연결만 허용한다.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(max(1, cfg.MaxPool))
		sqlDB.SetMaxIdleConns(max(1, cfg.MaxPool/2))
	}

	s := &Store{db: db, driver: driver, logger: logger}
	if err := s.AutoMigrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("index_store_opened", "driver", driver)
	return s, nil
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index db dir: %w", err)
	}
	return nil
}

// AutoMigrate 는 테이블 스키마를 맞춘다.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&DocumentRecord{}, &PostingRecord{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Driver 는 사용 중인 드라이버 이름이다.
func (s *Store) Driver() string { return s.driver }

// SaveDocuments: 문서와 포스팅을 한 트랜잭션으로 저장합니다.
// 같은 ID 의 문서는 덮어쓰고 기존 포스팅은 교체합니다.
func (s *Store) SaveDocuments(ctx context.Context, docs []search.Document) error {
	if len(docs) == 0 {
		return nil
	}

	records := make([]DocumentRecord, 0, len(docs))
	ids := make([]string, 0, len(docs))
	var postings []PostingRecord
	for _, d := range docs {
		records = append(records, DocumentRecord{ID: d.ID, Location: d.Location, TokenCount: len(d.Tokens)})
		ids = append(ids, d.ID)

		freq := make(map[string]int, len(d.Tokens))
		for _, t := range d.Tokens {
			freq[t]++
		}
		for term, n := range freq {
			postings = append(postings, PostingRecord{Term: term, DocumentID: d.ID, Freq: n})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"location", "token_count", "updated_at"}),
		}).CreateInBatches(records, batchSize).Error; err != nil {
			return fmt.Errorf("upsert documents: %w", err)
		}
		for chunk := range slices.Chunk(ids, batchSize) {
			if err := tx.Where("document_id IN ?", chunk).Delete(&PostingRecord{}).Error; err != nil {
				return fmt.Errorf("delete postings: %w", err)
			}
		}
		if len(postings) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(postings, batchSize).Error; err != nil {
			return fmt.Errorf("insert postings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("index_store_saved", "documents", len(records), "postings", len(postings))
	return nil
}

// LoadDocuments: 저장된 문서를 search.Document 로 복원합니다.
// 토큰 순서는 보존되지 않으며 용어(정렬)별 빈도만큼 반복됩니다.
func (s *Store) LoadDocuments(ctx context.Context) ([]search.Document, error) {
	var records []DocumentRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	var postings []PostingRecord
	if err := s.db.WithContext(ctx).Order("document_id, term").Find(&postings).Error; err != nil {
		return nil, fmt.Errorf("load postings: %w", err)
	}

	tokens := make(map[string][]string, len(records))
	for _, p := range postings {
		for range p.Freq {
			tokens[p.DocumentID] = append(tokens[p.DocumentID], p.Term)
		}
	}

	docs := make([]search.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, search.Document{ID: r.ID, Location: r.Location, Tokens: tokens[r.ID]})
	}
	return docs, nil
}

// Count 는 저장된 문서 수다.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&DocumentRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Ping 은 DB 연결 상태를 확인한다.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", s.driver, err)
	}
	return nil
}

// Close 는 DB 연결을 종료한다.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close index db: %w", err)
	}
	return nil
}
