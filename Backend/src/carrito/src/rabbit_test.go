package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// El handler se prueba directo con el cuerpo del mensaje; el transporte AMQP
// queda fuera, igual que en producción queda fuera el broker.

func TestHandlePeliculaAgregada(t *testing.T) {
	service, db := newTestService(t, nil)
	rabbit := &Rabbit{service: service}

	err := rabbit.handlePeliculaAgregada(context.Background(),
		[]byte(`{"id": 7, "nombre": "Matrix", "precio": 9.99}`))
	require.NoError(t, err)

	assert.Equal(t, 1, contarFilas(t, db, "peliculas"))

	info, err := service.AgregarPeliculaAlCarrito(context.Background(), 7, "usuario123")
	require.NoError(t, err)
	assertDecimal(t, "9.99", info.Total)
}

func TestHandlePeliculaAgregada_redeliveryEsNoOp(t *testing.T) {
	service, db := newTestService(t, nil)
	rabbit := &Rabbit{service: service}

	cuerpo := []byte(`{"id": 7, "nombre": "Matrix", "precio": 9.99}`)
	require.NoError(t, rabbit.handlePeliculaAgregada(context.Background(), cuerpo))

	// reentrega con otros datos: no pisa lo ya escrito ni falla
	require.NoError(t, rabbit.handlePeliculaAgregada(context.Background(),
		[]byte(`{"id": 7, "nombre": "Otra", "precio": 1.00}`)))

	assert.Equal(t, 1, contarFilas(t, db, "peliculas"))
	var nombre string
	require.NoError(t, db.QueryRow(`SELECT nombre FROM peliculas WHERE id=7`).Scan(&nombre))
	assert.Equal(t, "Matrix", nombre)
}

func TestHandlePeliculaAgregada_jsonInvalido(t *testing.T) {
	service, db := newTestService(t, nil)
	rabbit := &Rabbit{service: service}

	err := rabbit.handlePeliculaAgregada(context.Background(), []byte(`{no es json`))
	assert.Error(t, err)
	assert.Equal(t, 0, contarFilas(t, db, "peliculas"))
}

func TestHandlePeliculaAgregada_datosInvalidos(t *testing.T) {
	service, db := newTestService(t, nil)
	rabbit := &Rabbit{service: service}

	err := rabbit.handlePeliculaAgregada(context.Background(),
		[]byte(`{"id": 7, "nombre": "   ", "precio": 9.99}`))
	assert.ErrorIs(t, err, ErrPeliculaInvalida)
	assert.Equal(t, 0, contarFilas(t, db, "peliculas"))
}
