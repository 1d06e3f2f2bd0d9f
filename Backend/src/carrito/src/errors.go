package main

import "errors"

// Errores de dominio: los adaptadores los comparan con errors.Is.
var (
	ErrUsuarioInvalido      = errors.New("el id de usuario no puede ser nulo o vacío")
	ErrPeliculaNula         = errors.New("la película no puede ser nula")
	ErrPeliculaInvalida     = errors.New("la película no tiene id, nombre o precio válido")
	ErrCantidadInvalida     = errors.New("la cantidad debe ser mayor a cero")
	ErrCarritoVacio         = errors.New("no se puede procesar un carrito vacío")
	ErrPeliculaNoEncontrada = errors.New("película no encontrada en la base de datos")
)

// ErrNotFound lo devuelve el store cuando una fila no existe. Es una ausencia
// esperada, no una falla de infraestructura.
var ErrNotFound = errors.New("not found")

// ErrorPersistencia envuelve una falla del store conservando la causa
// original para diagnóstico.
type ErrorPersistencia struct {
	Op  string
	Err error
}

func (e *ErrorPersistencia) Error() string {
	return "persistencia: " + e.Op + ": " + e.Err.Error()
}

func (e *ErrorPersistencia) Unwrap() error { return e.Err }
