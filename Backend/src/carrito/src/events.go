package main

import "github.com/shopspring/decimal"

// Eventos que el carrito recibe del catálogo
const (
	QPeliculaAgregada  = "pelicula.agregada.queue"
	RKPeliculaAgregada = "pelicula.agregada"
)

type PeliculaAgregadaEvent struct {
	ID     int64           `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
}
