package basemap

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb/maptile"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
)

// MBTiles reads raster tiles from an MBTiles archive. Rows are stored in
// TMS order, counted from the south.
type MBTiles struct {
	Path     string
	MaxZoom  int
	Metadata map[string]string
	db       *sql.DB
}

// OpenMBTiles opens the archive read-only and loads its metadata. The
// archive's own maxzoom, when present, lowers maxZoom.
func OpenMBTiles(path string, maxZoom int) (*MBTiles, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound([]string{path})
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	m := &MBTiles{Path: path, MaxZoom: maxZoom, Metadata: map[string]string{}, db: db}
	if err := m.loadMetadata(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read metadata from %s", path)
	}
	if mz, err := strconv.Atoi(m.Metadata["maxzoom"]); err == nil && (m.MaxZoom <= 0 || mz < m.MaxZoom) {
		m.MaxZoom = mz
	}
	if m.MaxZoom <= 0 {
		m.MaxZoom = DefaultMaxZoom
	}
	return m, nil
}

func (m *MBTiles) loadMetadata() error {
	rows, err := m.db.Query(`SELECT name, value FROM metadata`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		m.Metadata[name] = value
	}
	return rows.Err()
}

// Name returns the archive name from metadata, or its path.
func (m *MBTiles) Name() string {
	if n := m.Metadata["name"]; n != "" {
		return sourceName(KindMBTiles, n)
	}
	return sourceName(KindMBTiles, m.Path)
}

// Tile returns the encoded image of one XYZ tile.
func (m *MBTiles) Tile(ctx context.Context, t maptile.Tile) ([]byte, error) {
	row := (uint32(1) << uint32(t.Z)) - 1 - t.Y
	var data []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		int(t.Z), int(t.X), int(row)).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errNoTile
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read tile %d/%d/%d from %s", t.Z, t.X, t.Y, m.Path)
	}
	return data, nil
}

// Fetch mosaics tiles from the archive and warps them to box.
func (m *MBTiles) Fetch(ctx context.Context, box geo.BBox, width, height int) (*Image, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	img, err := mosaic(ctx, box, width, height, m.MaxZoom, m.Tile, Options{})
	if err != nil {
		return nil, err
	}
	return &Image{Image: img, BBox: box, Attribution: m.Metadata["attribution"]}, nil
}

// Close closes the database.
func (m *MBTiles) Close() error { return m.db.Close() }

var _ Source = (*MBTiles)(nil)
