package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CatalogoResolver resuelve una película contra el catálogo externo.
type CatalogoResolver interface {
	ObtenerPelicula(ctx context.Context, peliculaID int64) (*PeliculaCatalogo, error)
}

// PeliculaCatalogo trae del catálogo solo lo que el carrito necesita.
type PeliculaCatalogo struct {
	ID     int64
	Nombre string
	Precio decimal.Decimal
}

// peliculaDetalleResponse es la respuesta del catálogo; los campos de
// ficha (director, actores, sinopsis...) no le interesan al carrito.
type peliculaDetalleResponse struct {
	ID     int64           `json:"id"`
	Titulo string          `json:"titulo"`
	Anio   int             `json:"anio"`
	Precio decimal.Decimal `json:"precio"`
}

const catalogoCacheSize = 256

// CatalogoClient consulta el catálogo por HTTP con un cache LRU adelante:
// las películas son inmutables, así que un acierto de cache nunca queda viejo.
type CatalogoClient struct {
	http  *resty.Client
	cache *lru.Cache[int64, *PeliculaCatalogo]
}

func NewCatalogoClient(baseURL string) (*CatalogoClient, error) {
	cache, err := lru.New[int64, *PeliculaCatalogo](catalogoCacheSize)
	if err != nil {
		return nil, err
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(4 * time.Second)
	return &CatalogoClient{http: client, cache: cache}, nil
}

func (c *CatalogoClient) ObtenerPelicula(ctx context.Context, peliculaID int64) (*PeliculaCatalogo, error) {
	if p, ok := c.cache.Get(peliculaID); ok {
		return p, nil
	}

	var detalle peliculaDetalleResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&detalle).
		SetPathParam("peliculaId", strconv.FormatInt(peliculaID, 10)).
		Get("/catalogo/{peliculaId}")
	if err != nil {
		// Catálogo caído se trata como ausencia: para el carrito es el
		// mismo resultado de negocio, no una falla propia.
		log.Warn().Err(err).Int64("pelicula", peliculaID).Msg("catálogo inaccesible")
		return nil, ErrPeliculaNoEncontrada
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrPeliculaNoEncontrada
	}
	if resp.IsError() {
		log.Warn().Int("status", resp.StatusCode()).Int64("pelicula", peliculaID).
			Msg("catálogo respondió con error")
		return nil, ErrPeliculaNoEncontrada
	}

	p := &PeliculaCatalogo{ID: detalle.ID, Nombre: detalle.Titulo, Precio: detalle.Precio}
	c.cache.Add(peliculaID, p)
	return p, nil
}
