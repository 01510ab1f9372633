package sketchmap

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"

	"github.com/bodgit/sketchmap/digest"
	"github.com/bodgit/sketchmap/grid"
	_ "github.com/mattn/go-sqlite3"
)

// DB persists mosaics in an SQLite database. It implements Store and Loader.
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the database in file.
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS mosaic (id TEXT PRIMARY KEY NOT NULL, x_panes INTEGER NOT NULL, y_panes INTEGER NOT NULL, public INTEGER NOT NULL, format TEXT NOT NULL, sha1 TEXT NOT NULL, image BLOB NOT NULL, layout BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Save stores m. The source image is only written the first time as it never
// changes.
func (db *DB) Save(m *Mosaic) error {
	layout, err := m.Layout().MarshalBinary()
	if err != nil {
		return err
	}
	x, y := m.Panes()

	var id string
	switch err := db.db.QueryRow("SELECT id FROM mosaic WHERE id = ?", m.id).Scan(&id); err {
	case sql.ErrNoRows:
		b := new(bytes.Buffer)
		if err := m.format.Encode(b, m.Image()); err != nil {
			return err
		}
		_, err := db.db.Exec("INSERT INTO mosaic (id, x_panes, y_panes, public, format, sha1, image, layout) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", m.id, x, y, m.public, m.format.Extension(), digest.Sum(b.Bytes()), b.Bytes(), layout)
		return err
	case nil:
		_, err := db.db.Exec("UPDATE mosaic SET x_panes = ?, y_panes = ?, public = ?, layout = ? WHERE id = ?", x, y, m.public, layout, m.id)
		return err
	default:
		return err
	}
}

// Delete removes m.
func (db *DB) Delete(m *Mosaic) error {
	_, err := db.db.Exec("DELETE FROM mosaic WHERE id = ?", m.id)
	return err
}

// Records returns every stored mosaic.
func (db *DB) Records() ([]Record, error) {
	rows, err := db.db.Query("SELECT id, x_panes, y_panes, public, format, sha1, image, layout FROM mosaic ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var format, sha string
		var b, layout []byte
		if err := rows.Scan(&r.ID, &r.XPanes, &r.YPanes, &r.Public, &format, &sha, &b, &layout); err != nil {
			return nil, err
		}

		if digest.Sum(b) != sha {
			return nil, fmt.Errorf("sketchmap: mosaic %q: image checksum mismatch", r.ID)
		}

		var ok bool
		if r.Format, ok = FormatFromExtension(format); !ok {
			return nil, fmt.Errorf("sketchmap: mosaic %q: unknown format %q", r.ID, format)
		}

		if r.Image, _, err = image.Decode(bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("sketchmap: mosaic %q: %w", r.ID, err)
		}

		r.Layout = grid.NewLayout()
		if err := r.Layout.UnmarshalBinary(layout); err != nil {
			return nil, fmt.Errorf("sketchmap: mosaic %q: %w", r.ID, err)
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
