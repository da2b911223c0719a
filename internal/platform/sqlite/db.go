package sqlite

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// IsSQLiteURL reports whether a database URL selects the SQLite backend.
func IsSQLiteURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "sqlite:")
}

// DSNFromURL converts a sqlite:// URL into a file path DSN.
// sqlite:///tasks.db is relative to the working directory and
// sqlite:////var/lib/tasks.db is absolute. Plain paths pass through.
func DSNFromURL(databaseURL string) (string, error) {
	if !IsSQLiteURL(databaseURL) {
		if databaseURL == "" {
			return "", fmt.Errorf("empty sqlite database url")
		}
		return databaseURL, nil
	}

	rest := strings.TrimPrefix(databaseURL, "sqlite:")
	rest = strings.TrimPrefix(rest, "//")

	var query string
	if i := strings.Index(rest, "?"); i >= 0 {
		rest, query = rest[:i], rest[i+1:]
	}

	// The host part is empty; what remains starts with the path separator.
	path := strings.TrimPrefix(rest, "/")
	if path == "" {
		return "", fmt.Errorf("sqlite url %q has no path", databaseURL)
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}

	if query != "" {
		return path + "?" + query, nil
	}
	return path, nil
}

// slogWriter adapts gorm's logger writer to slog.
type slogWriter struct {
	logger *slog.Logger
}

// Printf implements gormlogger.Writer.
func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

// NewDB opens a SQLite database and runs migrations.
func NewDB(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "tasks.db"
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(
		slogWriter{logger: logger.With(slog.String("component", "gorm"))},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if isMemoryDSN(dsn) {
		// Every connection to :memory: sees its own database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tasks table and its indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}

	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_tasks_pending_instance
		ON tasks (parent_task_id, due_date)
		WHERE status = 'pending' AND parent_task_id IS NOT NULL`).Error; err != nil {
		return fmt.Errorf("create pending instance index: %w", err)
	}

	return nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, MemoryDSN) || strings.Contains(dsn, "mode=memory")
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
