// DTOs de lectura, siguiendo el patrón del catálogo
package main

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemCarritoInfo struct {
	PeliculaID     int64           `json:"peliculaId"`
	PeliculaNombre string          `json:"peliculaNombre"`
	PeliculaPrecio decimal.Decimal `json:"peliculaPrecio"`
	Cantidad       int             `json:"cantidad"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CarritoInfo struct {
	ID            int64           `json:"id"`
	UsuarioID     string          `json:"usuarioId"`
	CantidadItems int             `json:"cantidadItems"`
	Total         decimal.Decimal `json:"total"`
}

type CarritoDetalle struct {
	ID                int64             `json:"id"`
	UsuarioID         string            `json:"usuarioId"`
	Items             []ItemCarritoInfo `json:"items"`
	CantidadItems     int               `json:"cantidadItems"`
	Total             decimal.Decimal   `json:"total"`
	FechaCreacion     time.Time         `json:"fechaCreacion"`
	FechaModificacion time.Time         `json:"fechaModificacion"`
}

// Las proyecciones son fotos de solo lectura del agregado, sin efectos.

func (i *ItemCarrito) ToItemCarritoInfo() ItemCarritoInfo {
	return ItemCarritoInfo{
		PeliculaID:     i.pelicula.id,
		PeliculaNombre: i.pelicula.nombre,
		PeliculaPrecio: i.pelicula.precio,
		Cantidad:       i.cantidad,
		Subtotal:       i.CalcularSubtotal(),
	}
}

func (c *Carrito) ToCarritoInfo() *CarritoInfo {
	return &CarritoInfo{
		ID:            c.id,
		UsuarioID:     c.usuarioID,
		CantidadItems: c.CantidadTotalItems(),
		Total:         c.CalcularTotal(),
	}
}

func (c *Carrito) ToCarritoDetalle() *CarritoDetalle {
	items := make([]ItemCarritoInfo, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.ToItemCarritoInfo())
	}
	return &CarritoDetalle{
		ID:                c.id,
		UsuarioID:         c.usuarioID,
		Items:             items,
		CantidadItems:     c.CantidadTotalItems(),
		Total:             c.CalcularTotal(),
		FechaCreacion:     c.fechaCreacion,
		FechaModificacion: c.fechaModificacion,
	}
}
