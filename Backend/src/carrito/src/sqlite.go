package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

func openSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// Busy timeout + WAL para concurrencia
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(2 * time.Minute)
	db.SetMaxOpenConns(1)
	return db, nil
}

const esquemaCarrito = `
CREATE TABLE IF NOT EXISTS peliculas(
  id     INTEGER PRIMARY KEY,
  nombre TEXT NOT NULL,
  precio TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS carritos(
  id                 INTEGER PRIMARY KEY AUTOINCREMENT,
  usuario_id         TEXT NOT NULL,
  fecha_creacion     INTEGER NOT NULL,
  fecha_modificacion INTEGER NOT NULL
);

-- Un solo carrito activo por usuario: sin esto, dos primeros "agregar"
-- concurrentes del mismo usuario crearían carritos duplicados.
CREATE UNIQUE INDEX IF NOT EXISTS idx_carritos_usuario ON carritos(usuario_id);

CREATE TABLE IF NOT EXISTS items_carrito(
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  carrito_id  INTEGER NOT NULL REFERENCES carritos(id) ON DELETE CASCADE,
  pelicula_id INTEGER NOT NULL REFERENCES peliculas(id),
  cantidad    INTEGER NOT NULL CHECK (cantidad > 0),
  UNIQUE(carrito_id, pelicula_id)
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, esquemaCarrito)
	return err
}
