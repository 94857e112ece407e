package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is a SQLite-backed chunk store. Chunk records and summary
// records live in separate tables so the two indices never collide on
// their keys.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.oscalgen/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".oscalgen", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode so reads do not block the analysis writers.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveChunk stores or replaces a chunk record.
func (s *Store) SaveChunk(ctx context.Context, record *domain.ChunkRecord) error {
	flagsJSON, hintsJSON, err := marshalEnrichment(record)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, source_file, chunk_type, content, start_line, end_line, embedding, flags, control_hints)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_file = excluded.source_file,
			chunk_type = excluded.chunk_type,
			content = excluded.content,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			embedding = excluded.embedding,
			flags = excluded.flags,
			control_hints = excluded.control_hints
	`, record.ID, record.SourceFile, string(record.Type), record.Content,
		record.StartLine, record.EndLine, float32SliceToBytes(record.Embedding),
		flagsJSON, hintsJSON)

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// GetChunk retrieves a chunk record by id.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.ChunkRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, chunk_type, content, start_line, end_line, embedding, flags, control_hints
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// ListChunks returns chunk records ordered by id, optionally filtered
// to one source file.
func (s *Store) ListChunks(ctx context.Context, sourceFile string) ([]domain.ChunkRecord, error) {
	query := `
		SELECT id, source_file, chunk_type, content, start_line, end_line, embedding, flags, control_hints
		FROM chunks`
	args := []any{}
	if sourceFile != "" {
		query += " WHERE source_file = ?"
		args = append(args, sourceFile)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// ClearChunks removes every chunk record, keeping summaries.
func (s *Store) ClearChunks(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// SaveSummary stores or replaces the summary record for a file.
func (s *Store) SaveSummary(ctx context.Context, record *domain.ChunkRecord) error {
	flagsJSON, hintsJSON, err := marshalEnrichment(record)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (source_file, id, chunk_type, content, embedding, flags, control_hints)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_file) DO UPDATE SET
			id = excluded.id,
			chunk_type = excluded.chunk_type,
			content = excluded.content,
			embedding = excluded.embedding,
			flags = excluded.flags,
			control_hints = excluded.control_hints
	`, record.SourceFile, record.ID, string(record.Type), record.Content,
		float32SliceToBytes(record.Embedding), flagsJSON, hintsJSON)

	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// GetSummary retrieves the summary record for a file path.
func (s *Store) GetSummary(ctx context.Context, sourceFile string) (*domain.ChunkRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, chunk_type, content, 0, 0, embedding, flags, control_hints
		FROM summaries WHERE source_file = ?
	`, sourceFile)

	return scanChunkRow(row)
}

// ListSummaries returns every summary record ordered by source file.
func (s *Store) ListSummaries(ctx context.Context) ([]domain.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_file, chunk_type, content, 0, 0, embedding, flags, control_hints
		FROM summaries ORDER BY source_file
	`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// UpdateHints additively merges flags and hints into the chunk record
// with the given id, falling back to the summary record keyed by the
// same value as a source file.
func (s *Store) UpdateHints(ctx context.Context, id string, flags domain.SecurityFlags, hints []string) error {
	record, err := s.GetChunk(ctx, id)
	if err == nil {
		mergeEnrichment(record, flags, hints)
		return s.SaveChunk(ctx, record)
	}

	record, err = s.GetSummary(ctx, id)
	if err != nil {
		return err
	}
	mergeEnrichment(record, flags, hints)
	return s.SaveSummary(ctx, record)
}

// mergeEnrichment applies additive flag and hint updates.
func mergeEnrichment(record *domain.ChunkRecord, flags domain.SecurityFlags, hints []string) {
	for flag, on := range flags {
		if on {
			if record.Flags == nil {
				record.Flags = domain.SecurityFlags{}
			}
			record.Flags[flag] = true
		}
	}
	for _, hint := range hints {
		record.AddHint(hint)
	}
}

// marshalEnrichment encodes the flag map and hint list for storage.
func marshalEnrichment(record *domain.ChunkRecord) (string, string, error) {
	flagsJSON, err := json.Marshal(record.Flags)
	if err != nil {
		return "", "", fmt.Errorf("marshalling flags: %w", err)
	}
	hintsJSON, err := json.Marshal(record.ControlHints)
	if err != nil {
		return "", "", fmt.Errorf("marshalling control hints: %w", err)
	}
	return string(flagsJSON), string(hintsJSON), nil
}

// scanChunkRow scans a record from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.ChunkRecord, error) {
	var record domain.ChunkRecord
	var chunkType string
	var embeddingBlob []byte
	var flagsJSON, hintsJSON sql.NullString

	if err := row.Scan(&record.ID, &record.SourceFile, &chunkType, &record.Content,
		&record.StartLine, &record.EndLine, &embeddingBlob, &flagsJSON, &hintsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	record.Type = domain.ChunkType(chunkType)
	record.Embedding = bytesToFloat32Slice(embeddingBlob)
	if err := unmarshalEnrichment(&record, flagsJSON, hintsJSON); err != nil {
		return nil, err
	}

	return &record, nil
}

// scanChunkRows scans all records from *sql.Rows.
func scanChunkRows(rows *sql.Rows) ([]domain.ChunkRecord, error) {
	var records []domain.ChunkRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.ChunkRecord
		var chunkType string
		var embeddingBlob []byte
		var flagsJSON, hintsJSON sql.NullString

		if err := rows.Scan(&record.ID, &record.SourceFile, &chunkType, &record.Content,
			&record.StartLine, &record.EndLine, &embeddingBlob, &flagsJSON, &hintsJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		record.Type = domain.ChunkType(chunkType)
		record.Embedding = bytesToFloat32Slice(embeddingBlob)
		if err := unmarshalEnrichment(&record, flagsJSON, hintsJSON); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return records, nil
}

// unmarshalEnrichment decodes the stored flag map and hint list.
func unmarshalEnrichment(record *domain.ChunkRecord, flagsJSON, hintsJSON sql.NullString) error {
	if flagsJSON.Valid && flagsJSON.String != "" && flagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(flagsJSON.String), &record.Flags); err != nil {
			return fmt.Errorf("unmarshaling flags: %w", err)
		}
	}
	if hintsJSON.Valid && hintsJSON.String != "" && hintsJSON.String != "null" {
		if err := json.Unmarshal([]byte(hintsJSON.String), &record.ControlHints); err != nil {
			return fmt.Errorf("unmarshaling control hints: %w", err)
		}
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
