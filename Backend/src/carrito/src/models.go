// Modelo de dominio del carrito
package main

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pelicula es la referencia local a un producto del catálogo. El catálogo es
// el dueño de los datos; acá solo se lee id, nombre y precio. Inmutable.
type Pelicula struct {
	id     int64
	nombre string
	precio decimal.Decimal
}

func NuevaPelicula(id int64, nombre string, precio decimal.Decimal) (*Pelicula, error) {
	if id <= 0 {
		return nil, ErrPeliculaInvalida
	}
	if strings.TrimSpace(nombre) == "" {
		return nil, ErrPeliculaInvalida
	}
	if precio.IsNegative() {
		return nil, ErrPeliculaInvalida
	}
	return &Pelicula{id: id, nombre: nombre, precio: precio}, nil
}

func (p *Pelicula) ID() int64               { return p.id }
func (p *Pelicula) Nombre() string          { return p.nombre }
func (p *Pelicula) Precio() decimal.Decimal { return p.precio }

// ItemCarrito es una línea del carrito: una película con su cantidad.
// La cantidad es siempre mayor a cero; una línea en cero se elimina, nunca
// se deja vacía.
type ItemCarrito struct {
	pelicula *Pelicula
	cantidad int
}

func NuevoItemCarrito(pelicula *Pelicula, cantidad int) (*ItemCarrito, error) {
	if pelicula == nil {
		return nil, ErrPeliculaNula
	}
	if cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	return &ItemCarrito{pelicula: pelicula, cantidad: cantidad}, nil
}

func (i *ItemCarrito) Pelicula() *Pelicula { return i.pelicula }
func (i *ItemCarrito) Cantidad() int       { return i.cantidad }

func (i *ItemCarrito) IncrementarCantidad(adicional int) error {
	if adicional <= 0 {
		return ErrCantidadInvalida
	}
	i.cantidad += adicional
	return nil
}

func (i *ItemCarrito) ActualizarCantidad(nueva int) error {
	if nueva <= 0 {
		return ErrCantidadInvalida
	}
	i.cantidad = nueva
	return nil
}

func (i *ItemCarrito) CalcularSubtotal() decimal.Decimal {
	return i.pelicula.precio.Mul(decimal.NewFromInt(int64(i.cantidad)))
}

func (i *ItemCarrito) EsDeLaPelicula(peliculaID int64) bool {
	return i.pelicula.id == peliculaID
}

// Carrito es el agregado: un usuario, sus líneas (una por película) y las
// fechas de creación y última modificación. Se muta solo a través de sus
// métodos; el total y la cantidad de items se derivan siempre de las líneas.
type Carrito struct {
	id                int64
	usuarioID         string
	items             []*ItemCarrito
	fechaCreacion     time.Time
	fechaModificacion time.Time
}

func NuevoCarrito(usuarioID string) (*Carrito, error) {
	if strings.TrimSpace(usuarioID) == "" {
		return nil, ErrUsuarioInvalido
	}
	ahora := time.Now()
	return &Carrito{
		usuarioID:         usuarioID,
		fechaCreacion:     ahora,
		fechaModificacion: ahora,
	}, nil
}

func (c *Carrito) ID() int64                    { return c.id }
func (c *Carrito) UsuarioID() string            { return c.usuarioID }
func (c *Carrito) FechaCreacion() time.Time     { return c.fechaCreacion }
func (c *Carrito) FechaModificacion() time.Time { return c.fechaModificacion }

// Items devuelve una copia de las líneas: nadie muta la colección por fuera
// del agregado.
func (c *Carrito) Items() []*ItemCarrito {
	out := make([]*ItemCarrito, len(c.items))
	copy(out, c.items)
	return out
}

// AgregarPelicula suma cantidad a la línea existente de la película o crea
// una nueva. Agregar dos veces la misma película acumula, nunca duplica.
func (c *Carrito) AgregarPelicula(pelicula *Pelicula, cantidad int) error {
	if pelicula == nil {
		return ErrPeliculaNula
	}
	if cantidad <= 0 {
		return ErrCantidadInvalida
	}

	if existente := c.buscarItem(pelicula.id); existente != nil {
		if err := existente.IncrementarCantidad(cantidad); err != nil {
			return err
		}
	} else {
		item, err := NuevoItemCarrito(pelicula, cantidad)
		if err != nil {
			return err
		}
		c.items = append(c.items, item)
	}

	c.tocar()
	return nil
}

// ActualizarCantidadPelicula reemplaza la cantidad de la línea. Si la
// película no está en el carrito es un no-op silencioso; la cantidad inválida
// falla siempre, esté o no la película.
func (c *Carrito) ActualizarCantidadPelicula(peliculaID int64, nuevaCantidad int) error {
	if nuevaCantidad <= 0 {
		return ErrCantidadInvalida
	}

	item := c.buscarItem(peliculaID)
	if item == nil {
		return nil
	}
	if err := item.ActualizarCantidad(nuevaCantidad); err != nil {
		return err
	}
	c.tocar()
	return nil
}

// EliminarPelicula saca la línea si existe; es idempotente.
func (c *Carrito) EliminarPelicula(peliculaID int64) {
	for i, item := range c.items {
		if item.EsDeLaPelicula(peliculaID) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.tocar()
}

func (c *Carrito) Vaciar() {
	c.items = nil
	c.tocar()
}

func (c *Carrito) CalcularTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.CalcularSubtotal())
	}
	return total
}

func (c *Carrito) CantidadTotalItems() int {
	total := 0
	for _, item := range c.items {
		total += item.cantidad
	}
	return total
}

func (c *Carrito) EstaVacio() bool { return len(c.items) == 0 }

func (c *Carrito) ContienePelicula(peliculaID int64) bool {
	return c.buscarItem(peliculaID) != nil
}

// ValidarParaProcesar es la única puerta previa al checkout: un carrito
// vacío no se procesa.
func (c *Carrito) ValidarParaProcesar() error {
	if c.EstaVacio() {
		return ErrCarritoVacio
	}
	return nil
}

func (c *Carrito) buscarItem(peliculaID int64) *ItemCarrito {
	for _, item := range c.items {
		if item.EsDeLaPelicula(peliculaID) {
			return item
		}
	}
	return nil
}

func (c *Carrito) tocar() {
	c.fechaModificacion = time.Now()
}
