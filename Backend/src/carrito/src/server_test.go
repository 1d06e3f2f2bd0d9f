package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretoDePrueba = "secreto-de-prueba"

func tokenDePrueba(t *testing.T, usuarioID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": usuarioID,
	}).SignedString([]byte(secretoDePrueba))
	require.NoError(t, err)
	return token
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	service, _ := newTestService(t, nil)
	sembrarPelicula(t, service, 1, "Avatar", "15.99")
	sembrarPelicula(t, service, 2, "Titanic", "12.99")
	return NewServer(service, []byte(secretoDePrueba)).Handler("http://localhost:5173")
}

func hacerRequest(t *testing.T, handler http.Handler, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodificar[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_sinTokenDevuelve401(t *testing.T) {
	handler := newTestHandler(t)

	rec := hacerRequest(t, handler, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = hacerRequest(t, handler, http.MethodPost, "/agregar/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_tokenConFirmaAjenaDevuelve401(t *testing.T) {
	handler := newTestHandler(t)
	ajeno, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "usuario123",
	}).SignedString([]byte("otro-secreto"))
	require.NoError(t, err)

	rec := hacerRequest(t, handler, http.MethodGet, "/", ajeno, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_obtenerCarritoCreaSiNoExiste(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	rec := hacerRequest(t, handler, http.MethodGet, "/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	detalle := decodificar[CarritoDetalle](t, rec)
	assert.Equal(t, "usuario123", detalle.UsuarioID)
	assert.Equal(t, 0, detalle.CantidadItems)
	assert.Empty(t, detalle.Items)
}

func TestServer_agregarPelicula(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	rec := hacerRequest(t, handler, http.MethodPost, "/agregar/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodificar[CarritoInfo](t, rec)
	assert.Equal(t, "usuario123", info.UsuarioID)
	assert.Equal(t, 1, info.CantidadItems)
	assertDecimal(t, "15.99", info.Total)

	// repetir acumula
	rec = hacerRequest(t, handler, http.MethodPost, "/agregar/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info = decodificar[CarritoInfo](t, rec)
	assert.Equal(t, 2, info.CantidadItems)
	assertDecimal(t, "31.98", info.Total)
}

func TestServer_agregarPeliculaInexistenteDevuelve404(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	rec := hacerRequest(t, handler, http.MethodPost, "/agregar/999", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_peliculaIDInvalidoDevuelve400(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	rec := hacerRequest(t, handler, http.MethodPost, "/agregar/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hacerRequest(t, handler, http.MethodPost, "/agregar/-1", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_actualizarCantidad(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	rec := hacerRequest(t, handler, http.MethodPost, "/agregar/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = hacerRequest(t, handler, http.MethodPut, "/pelicula/1", token, `{"cantidad": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodificar[CarritoInfo](t, rec)
	assert.Equal(t, 4, info.CantidadItems)

	rec = hacerRequest(t, handler, http.MethodPut, "/pelicula/1", token, `{"cantidad": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_eliminarYVaciar(t *testing.T) {
	handler := newTestHandler(t)
	token := tokenDePrueba(t, "usuario123")

	hacerRequest(t, handler, http.MethodPost, "/agregar/1", token, "")
	hacerRequest(t, handler, http.MethodPost, "/agregar/2", token, "")

	rec := hacerRequest(t, handler, http.MethodDelete, "/pelicula/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodificar[CarritoInfo](t, rec)
	assert.Equal(t, 1, info.CantidadItems)

	rec = hacerRequest(t, handler, http.MethodDelete, "/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info = decodificar[CarritoInfo](t, rec)
	assert.Equal(t, 0, info.CantidadItems)
	assertDecimal(t, "0", info.Total)
}

func TestServer_cadaUsuarioVeSuCarrito(t *testing.T) {
	handler := newTestHandler(t)

	rec := hacerRequest(t, handler, http.MethodPost, "/agregar/1", tokenDePrueba(t, "usuario1"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = hacerRequest(t, handler, http.MethodGet, "/", tokenDePrueba(t, "usuario2"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	detalle := decodificar[CarritoDetalle](t, rec)
	assert.Equal(t, "usuario2", detalle.UsuarioID)
	assert.Equal(t, 0, detalle.CantidadItems)
}
