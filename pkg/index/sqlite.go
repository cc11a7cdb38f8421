package index

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xhad/tutor/internal/types"

	_ "modernc.org/sqlite"
)

// ErrIndexNotFound is returned by Load when no persisted index exists at
// the given path.
var ErrIndexNotFound = errors.New("index not found")

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE chunks (
	seq       INTEGER PRIMARY KEY,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

// Save persists the index as a single SQLite file at path: chunk texts and
// embeddings in insertion order, plus the model name and dimension needed to
// re-embed queries after a load. The file is written to a temporary sibling
// and renamed so a crash cannot leave a half-written index behind.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp := path + ".tmp"
	os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer os.Remove(tmp)

	if err := ix.write(db); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move index into place: %w", err)
	}
	return nil
}

func (ix *Index) write(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create index schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		"model": ix.model,
		"dim":   strconv.Itoa(ix.dim),
	} {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to write index metadata: %w", err)
		}
	}

	for i, chunk := range ix.chunks {
		if _, err := tx.Exec(
			"INSERT INTO chunks (seq, text, embedding) VALUES (?, ?, ?)",
			i, chunk, encodeVector(ix.vecs[i]),
		); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// Load reads a persisted index back into memory. It returns ErrIndexNotFound
// if no file exists at path, and an error if the index was built with a
// different embedding model than the supplied embedder.
func Load(path string, embedder types.Embedder) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat index file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	meta, err := readMeta(db)
	if err != nil {
		return nil, err
	}

	if meta["model"] != embedder.Model() {
		return nil, fmt.Errorf("index %s was built with embedding model %q, but %q is configured",
			path, meta["model"], embedder.Model())
	}

	dim, err := strconv.Atoi(meta["dim"])
	if err != nil || dim < 1 {
		return nil, fmt.Errorf("index %s has invalid dimension %q", path, meta["dim"])
	}

	ix := &Index{
		model:    meta["model"],
		dim:      dim,
		embedder: embedder,
	}

	rows, err := db.Query("SELECT text, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("chunk vector dimension %d does not match index dimension %d", len(vec), dim)
		}

		ix.chunks = append(ix.chunks, text)
		ix.vecs = append(ix.vecs, vec)
		ix.mags = append(ix.mags, magnitude(vec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}

	if len(ix.chunks) == 0 {
		return nil, fmt.Errorf("index %s contains no chunks", path)
	}

	return ix, nil
}

func readMeta(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query("SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

// encodeVector packs a vector as a little-endian sequence of IEEE 754
// float32 values; the length is derived from the blob size on decode.
func encodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
