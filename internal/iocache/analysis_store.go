package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for analysis storage.
const (
	commitAnalysesTable = "cleanscore_commit_analyses"
	fileRatingsTable    = "cleanscore_file_ratings"
)

// ErrDuplicateAnalysis is returned by Add when the commit already has a stored analysis.
var ErrDuplicateAnalysis = errors.New("commit already has a stored analysis")

// sqliteTimeLayout keeps a fixed width so TEXT columns sort chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const summaryColumns = `id, commit_id, author, email, commit_date, analysis_date, language,
	added_lines, removed_lines, note, quality,
	variable_naming, function_sizes, no_needs_comments, method_cohesion, dead_code,
	file_count, suggestion_count`

const fileRatingColumns = `commit_id, file_path, language, added_lines, removed_lines,
	variable_naming, function_sizes, no_needs_comments, method_cohesion, dead_code,
	note, quality, suggestion_count, analysis_date`

// AnalysisStoreImpl implements the AnalysisStore interface on database/sql.
// The none backend keeps a nil db and turns every operation into a no-op.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore opens the backend, verifies the connection and creates the tables.
func NewAnalysisStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is readable and its directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createAnalysisTables(ctx, db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// openDB opens a connection pool for the backend without pinging it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetAnalysisDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL connection string: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.MultiStatements = true
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createAnalysisTables applies the first migration of the backend.
// Its statements use IF NOT EXISTS, so reopening a store is harmless.
func createAnalysisTables(ctx context.Context, db *sql.DB, backend schema.DatabaseBackend) error {
	dir, err := migrationDir(backend)
	if err != nil {
		return err
	}
	ddl, err := migrationsFS.ReadFile("migrations/" + dir + "/" + initialMigration + ".up.sql")
	if err != nil {
		return fmt.Errorf("failed to read table definitions: %w", err)
	}
	for stmt := range strings.SplitSeq(string(ddl), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// GetByID implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) GetByID(ctx context.Context, id string) (*schema.CommitAnalysis, error) {
	return as.getOne(ctx, "id", id)
}

// GetByCommitID implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) GetByCommitID(ctx context.Context, commitID string) (*schema.CommitAnalysis, error) {
	return as.getOne(ctx, "commit_id", commitID)
}

func (as *AnalysisStoreImpl) getOne(ctx context.Context, column, value string) (*schema.CommitAnalysis, error) {
	if as.disabled() {
		return nil, nil
	}

	query := as.rebind(fmt.Sprintf("SELECT payload FROM %s WHERE %s = ?", as.table(commitAnalysesTable), column))
	var payload string
	err := as.db.QueryRowContext(ctx, query, value).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis by %s: %w", column, err)
	}

	var rec schema.CommitAnalysisRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis %s: %w", value, err)
	}
	return schema.RestoreCommitAnalysis(rec)
}

// Add implements the AnalysisStore interface.
// The analysis row and its file rows are written in one transaction.
func (as *AnalysisStoreImpl) Add(ctx context.Context, analysis *schema.CommitAnalysis) error {
	if as.disabled() {
		return nil
	}

	rec := analysis.Record()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode analysis of %s: %w", rec.CommitID, err)
	}
	s := rec.Summary()

	tx, err := as.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	countQuery := as.rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE commit_id = ?", as.table(commitAnalysesTable)))
	if err := tx.QueryRowContext(ctx, countQuery, rec.CommitID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check for stored analysis: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateAnalysis, rec.CommitID)
	}

	insertAnalysis := as.rebind(fmt.Sprintf(`INSERT INTO %s (%s, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, as.table(commitAnalysesTable), summaryColumns))
	_, err = tx.ExecContext(ctx, insertAnalysis,
		s.ID, s.CommitID, s.Author, s.Email, as.formatTime(s.CommitDate), as.formatTime(s.AnalysisDate), s.Language,
		s.AddedLines, s.RemovedLines, s.Note, string(s.Quality),
		s.Scores.VariableNaming, s.Scores.FunctionSizes, s.Scores.NoNeedsComments, s.Scores.MethodCohesion, s.Scores.DeadCode,
		s.FileCount, s.SuggestionCount, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert analysis of %s: %w", rec.CommitID, err)
	}

	insertFile := as.rebind(fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, as.table(fileRatingsTable), fileRatingColumns))
	for _, f := range rec.FileRecords() {
		_, err := tx.ExecContext(ctx, insertFile,
			f.CommitID, f.FilePath, f.Language, f.AddedLines, f.RemovedLines,
			f.Scores.VariableNaming, f.Scores.FunctionSizes, f.Scores.NoNeedsComments, f.Scores.MethodCohesion, f.Scores.DeadCode,
			f.Note, string(f.Quality), f.SuggestionCount, as.formatTime(f.AnalysisDate))
		if err != nil {
			return fmt.Errorf("failed to insert rating of %s: %w", f.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis of %s: %w", rec.CommitID, err)
	}
	return nil
}

// List implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) List(ctx context.Context, filter schema.ListFilter) ([]schema.AnalysisSummary, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s", summaryColumns, as.table(commitAnalysesTable))
	var args []any
	if filter.Language != "" {
		query += " WHERE LOWER(language) = ?"
		args = append(args, strings.ToLower(filter.Language))
	}
	query += " ORDER BY analysis_date DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := as.db.QueryContext(ctx, as.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisSummary
	for rows.Next() {
		var s schema.AnalysisSummary
		var quality string
		if err := rows.Scan(&s.ID, &s.CommitID, &s.Author, &s.Email,
			timeScanner{&s.CommitDate}, timeScanner{&s.AnalysisDate}, &s.Language,
			&s.AddedLines, &s.RemovedLines, &s.Note, &quality,
			&s.Scores.VariableNaming, &s.Scores.FunctionSizes, &s.Scores.NoNeedsComments,
			&s.Scores.MethodCohesion, &s.Scores.DeadCode,
			&s.FileCount, &s.SuggestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		s.Quality = schema.Quality(quality)
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return results, nil
}

// Delete implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) Delete(ctx context.Context, commitID string) error {
	if as.disabled() {
		return nil
	}

	tx, err := as.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{fileRatingsTable, commitAnalysesTable} {
		query := as.rebind(fmt.Sprintf("DELETE FROM %s WHERE commit_id = ?", as.table(table)))
		if _, err := tx.ExecContext(ctx, query, commitID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// GetAllFileRecords implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) GetAllFileRecords(ctx context.Context) ([]schema.FileRatingRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY analysis_date, commit_id, file_path", fileRatingColumns, as.table(fileRatingsTable))
	rows, err := as.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileRatingRecord
	for rows.Next() {
		var r schema.FileRatingRecord
		var quality string
		if err := rows.Scan(&r.CommitID, &r.FilePath, &r.Language, &r.AddedLines, &r.RemovedLines,
			&r.Scores.VariableNaming, &r.Scores.FunctionSizes, &r.Scores.NoNeedsComments,
			&r.Scores.MethodCohesion, &r.Scores.DeadCode,
			&r.Note, &quality, &r.SuggestionCount, timeScanner{&r.AnalysisDate}); err != nil {
			return nil, fmt.Errorf("failed to scan file rating: %w", err)
		}
		r.Quality = schema.Quality(quality)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file ratings: %w", err)
	}
	return results, nil
}

// GetStatus implements the AnalysisStore interface.
func (as *AnalysisStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(as.backend),
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	if err := as.db.PingContext(ctx); err != nil {
		return status, fmt.Errorf("failed to reach %s database: %w", as.backend, err)
	}
	status.Connected = true

	for _, table := range []string{commitAnalysesTable, fileRatingsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))
		if err := as.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalAnalyses = int(status.TableSizes[commitAnalysesTable])
	status.TotalFiles = int(status.TableSizes[fileRatingsTable])

	if status.TotalAnalyses > 0 {
		query := fmt.Sprintf("SELECT MIN(analysis_date), MAX(analysis_date) FROM %s", as.table(commitAnalysesTable))
		err := as.db.QueryRowContext(ctx, query).Scan(timeScanner{&status.OldestAnalysisTime}, timeScanner{&status.LastAnalysisTime})
		if err != nil {
			return status, fmt.Errorf("failed to get analysis time range: %w", err)
		}
	}
	return status, nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (as *AnalysisStoreImpl) rebind(query string) string {
	if as.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (as *AnalysisStoreImpl) formatTime(t time.Time) any {
	if as.backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// timeScanner reads timestamps stored natively or as text.
type timeScanner struct {
	dst *time.Time
}

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (s timeScanner) parse(v string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("failed to parse time %q", v)
}
