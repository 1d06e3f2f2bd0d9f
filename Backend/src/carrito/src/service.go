package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CarritoService orquesta cada operación como una única transacción:
// resolver la película, buscar o crear el carrito del usuario, mutar el
// agregado en memoria y persistirlo completo. Cualquier falla a mitad de
// camino deja la base como si la operación nunca hubiera pasado.
type CarritoService struct {
	store    Store
	catalogo CatalogoResolver // puede ser nil: se resuelve solo contra el espejo local
}

func NewCarritoService(store Store, catalogo CatalogoResolver) *CarritoService {
	return &CarritoService{store: store, catalogo: catalogo}
}

// ObtenerCarrito devuelve el detalle del carrito más reciente del usuario.
// Si no tiene ninguno, crea y persiste uno vacío: es el camino documentado
// de "ver crea si no existe" que usa el endpoint de lectura.
func (s *CarritoService) ObtenerCarrito(ctx context.Context, usuarioID string) (*CarritoDetalle, error) {
	var detalle *CarritoDetalle
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		carrito, err := s.obtenerOCrearCarrito(ctx, tx, usuarioID)
		if err != nil {
			return err
		}
		detalle = carrito.ToCarritoDetalle()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detalle, nil
}

// AgregarPeliculaAlCarrito agrega una unidad de la película al carrito del
// usuario. Llamadas repetidas con la misma película acumulan cantidad.
func (s *CarritoService) AgregarPeliculaAlCarrito(ctx context.Context, peliculaID int64, usuarioID string) (*CarritoInfo, error) {
	var info *CarritoInfo
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		pelicula, err := s.resolverPelicula(ctx, tx, peliculaID)
		if err != nil {
			return err
		}
		carrito, err := s.obtenerOCrearCarrito(ctx, tx, usuarioID)
		if err != nil {
			return err
		}
		// Cantidad por defecto = 1 por llamada
		if err := carrito.AgregarPelicula(pelicula, 1); err != nil {
			return err
		}
		if err := tx.GuardarCarrito(ctx, carrito); err != nil {
			return err
		}
		info = carrito.ToCarritoInfo()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Int64("pelicula", peliculaID).Str("usuario", usuarioID).
		Int("items", info.CantidadItems).Msg("película agregada al carrito")
	return info, nil
}

// ActualizarCantidadPelicula fija la cantidad de una línea. Si la película
// no está en el carrito la operación no cambia nada.
func (s *CarritoService) ActualizarCantidadPelicula(ctx context.Context, peliculaID int64, cantidad int, usuarioID string) (*CarritoInfo, error) {
	return s.mutarCarrito(ctx, usuarioID, func(carrito *Carrito) error {
		return carrito.ActualizarCantidadPelicula(peliculaID, cantidad)
	})
}

// EliminarPeliculaDelCarrito saca la línea de la película; es idempotente.
func (s *CarritoService) EliminarPeliculaDelCarrito(ctx context.Context, peliculaID int64, usuarioID string) (*CarritoInfo, error) {
	return s.mutarCarrito(ctx, usuarioID, func(carrito *Carrito) error {
		carrito.EliminarPelicula(peliculaID)
		return nil
	})
}

func (s *CarritoService) VaciarCarrito(ctx context.Context, usuarioID string) (*CarritoInfo, error) {
	return s.mutarCarrito(ctx, usuarioID, func(carrito *Carrito) error {
		carrito.Vaciar()
		return nil
	})
}

// SincronizarPelicula agrega una película al espejo local del catálogo.
// Si el id ya existe no hace nada: el primero que escribe gana, y eso hace
// idempotente al consumidor de eventos bajo entrega at-least-once.
func (s *CarritoService) SincronizarPelicula(ctx context.Context, id int64, nombre string, precio decimal.Decimal) error {
	return s.store.InTx(ctx, func(tx StoreTx) error {
		_, err := tx.BuscarPelicula(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		pelicula, err := NuevaPelicula(id, nombre, precio)
		if err != nil {
			return err
		}
		return tx.CrearPelicula(ctx, pelicula)
	})
}

func (s *CarritoService) mutarCarrito(ctx context.Context, usuarioID string, mutar func(*Carrito) error) (*CarritoInfo, error) {
	var info *CarritoInfo
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		carrito, err := s.obtenerOCrearCarrito(ctx, tx, usuarioID)
		if err != nil {
			return err
		}
		if err := mutar(carrito); err != nil {
			return err
		}
		if err := tx.GuardarCarrito(ctx, carrito); err != nil {
			return err
		}
		info = carrito.ToCarritoInfo()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// obtenerOCrearCarrito busca el carrito más reciente del usuario dentro de
// la transacción y crea uno vacío si no hay. El índice único por usuario en
// el store corta la carrera de dos primeras altas concurrentes.
func (s *CarritoService) obtenerOCrearCarrito(ctx context.Context, tx StoreTx, usuarioID string) (*Carrito, error) {
	carrito, err := tx.BuscarCarritoReciente(ctx, usuarioID)
	if err == nil {
		return carrito, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	carrito, err = NuevoCarrito(usuarioID)
	if err != nil {
		return nil, err
	}
	if err := tx.CrearCarrito(ctx, carrito); err != nil {
		return nil, err
	}
	return carrito, nil
}

// resolverPelicula busca primero en el espejo local y recién después en el
// catálogo remoto. Un acierto remoto se espeja en la misma transacción para
// que las líneas del carrito siempre resuelvan localmente de ahí en más.
func (s *CarritoService) resolverPelicula(ctx context.Context, tx StoreTx, peliculaID int64) (*Pelicula, error) {
	pelicula, err := tx.BuscarPelicula(ctx, peliculaID)
	if err == nil {
		return pelicula, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if s.catalogo == nil {
		return nil, ErrPeliculaNoEncontrada
	}

	remota, err := s.catalogo.ObtenerPelicula(ctx, peliculaID)
	if err != nil {
		return nil, err
	}
	pelicula, err = NuevaPelicula(remota.ID, remota.Nombre, remota.Precio)
	if err != nil {
		return nil, err
	}
	if err := tx.CrearPelicula(ctx, pelicula); err != nil {
		return nil, err
	}
	return pelicula, nil
}
