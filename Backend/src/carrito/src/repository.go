// Operaciones de persistencia del carrito y del espejo de películas
package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Store abre el alcance transaccional. Todo lo que una operación del
// servicio lee y escribe pasa por una única transacción: commit si fn
// devuelve nil, rollback en cualquier otro camino de salida.
type Store interface {
	InTx(ctx context.Context, fn func(tx StoreTx) error) error
}

// StoreTx agrupa las lecturas y escrituras disponibles dentro de una
// transacción. El carrito se guarda como agregado completo: la fila del
// carrito más el reemplazo total de sus items.
type StoreTx interface {
	// BuscarCarritoReciente devuelve el carrito más nuevo del usuario por
	// fecha de creación, o ErrNotFound.
	BuscarCarritoReciente(ctx context.Context, usuarioID string) (*Carrito, error)
	// CrearCarrito inserta el carrito y le asigna el id generado.
	CrearCarrito(ctx context.Context, c *Carrito) error
	// GuardarCarrito persiste el agregado completo reemplazando los items.
	GuardarCarrito(ctx context.Context, c *Carrito) error
	BuscarPelicula(ctx context.Context, id int64) (*Pelicula, error)
	CrearPelicula(ctx context.Context, p *Pelicula) error
}

type sqliteStore struct{ db *sql.DB }

func NewSQLiteStore(db *sql.DB) Store { return &sqliteStore{db: db} }

func (s *sqliteStore) InTx(ctx context.Context, fn func(tx StoreTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ErrorPersistencia{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &ErrorPersistencia{Op: "commit tx", Err: err}
	}
	return nil
}

type sqliteTx struct{ tx *sql.Tx }

func (t *sqliteTx) BuscarCarritoReciente(ctx context.Context, usuarioID string) (*Carrito, error) {
	var (
		c        Carrito
		creacion int64
		modif    int64
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, usuario_id, fecha_creacion, fecha_modificacion
		FROM carritos WHERE usuario_id=?
		ORDER BY fecha_creacion DESC, id DESC LIMIT 1`, usuarioID).
		Scan(&c.id, &c.usuarioID, &creacion, &modif)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &ErrorPersistencia{Op: "buscar carrito", Err: err}
	}
	c.fechaCreacion = time.Unix(creacion, 0)
	c.fechaModificacion = time.Unix(modif, 0)

	rows, err := t.tx.QueryContext(ctx, `
		SELECT p.id, p.nombre, p.precio, i.cantidad
		FROM items_carrito i
		JOIN peliculas p ON p.id = i.pelicula_id
		WHERE i.carrito_id=?
		ORDER BY i.id`, c.id)
	if err != nil {
		return nil, &ErrorPersistencia{Op: "cargar items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p         Pelicula
			precioStr string
			cantidad  int
		)
		if err := rows.Scan(&p.id, &p.nombre, &precioStr, &cantidad); err != nil {
			return nil, &ErrorPersistencia{Op: "cargar items", Err: err}
		}
		precio, err := decimal.NewFromString(precioStr)
		if err != nil {
			return nil, &ErrorPersistencia{Op: "cargar items", Err: err}
		}
		p.precio = precio
		c.items = append(c.items, &ItemCarrito{pelicula: &p, cantidad: cantidad})
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrorPersistencia{Op: "cargar items", Err: err}
	}
	return &c, nil
}

func (t *sqliteTx) CrearCarrito(ctx context.Context, c *Carrito) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO carritos(usuario_id, fecha_creacion, fecha_modificacion)
		VALUES (?, ?, ?)`,
		c.usuarioID, c.fechaCreacion.Unix(), c.fechaModificacion.Unix())
	if err != nil {
		return &ErrorPersistencia{Op: "crear carrito", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return &ErrorPersistencia{Op: "crear carrito", Err: err}
	}
	c.id = id
	if len(c.items) > 0 {
		return t.guardarItems(ctx, c)
	}
	return nil
}

func (t *sqliteTx) GuardarCarrito(ctx context.Context, c *Carrito) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE carritos SET fecha_modificacion=? WHERE id=?`,
		c.fechaModificacion.Unix(), c.id)
	if err != nil {
		return &ErrorPersistencia{Op: "guardar carrito", Err: err}
	}
	return t.guardarItems(ctx, c)
}

// guardarItems reemplaza los items del carrito: las líneas pertenecen al
// agregado y se recrean con cada guardado, nunca se tocan de a una.
func (t *sqliteTx) guardarItems(ctx context.Context, c *Carrito) error {
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM items_carrito WHERE carrito_id=?`, c.id); err != nil {
		return &ErrorPersistencia{Op: "guardar items", Err: err}
	}
	for _, item := range c.items {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO items_carrito(carrito_id, pelicula_id, cantidad)
			VALUES (?, ?, ?)`,
			c.id, item.pelicula.id, item.cantidad); err != nil {
			return &ErrorPersistencia{Op: "guardar items", Err: err}
		}
	}
	return nil
}

func (t *sqliteTx) BuscarPelicula(ctx context.Context, id int64) (*Pelicula, error) {
	var (
		p         Pelicula
		precioStr string
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, nombre, precio FROM peliculas WHERE id=?`, id).
		Scan(&p.id, &p.nombre, &precioStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &ErrorPersistencia{Op: "buscar película", Err: err}
	}
	precio, err := decimal.NewFromString(precioStr)
	if err != nil {
		return nil, &ErrorPersistencia{Op: "buscar película", Err: err}
	}
	p.precio = precio
	return &p, nil
}

func (t *sqliteTx) CrearPelicula(ctx context.Context, p *Pelicula) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO peliculas(id, nombre, precio) VALUES (?, ?, ?)`,
		p.id, p.nombre, p.precio.String())
	if err != nil {
		return &ErrorPersistencia{Op: "crear película", Err: err}
	}
	return nil
}
