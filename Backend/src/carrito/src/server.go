// Superficie HTTP del carrito. La autenticación real vive en el gateway;
// acá solo se verifica el token y se extrae el usuario del claim "sub".
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	service   *CarritoService
	jwtSecret []byte
}

func NewServer(service *CarritoService, jwtSecret []byte) *Server {
	return &Server{service: service, jwtSecret: jwtSecret}
}

func (s *Server) Handler(corsOrigin string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.autenticado(s.handleObtenerCarrito))
	mux.HandleFunc("POST /agregar/{peliculaId}", s.autenticado(s.handleAgregarPelicula))
	mux.HandleFunc("PUT /pelicula/{peliculaId}", s.autenticado(s.handleActualizarCantidad))
	mux.HandleFunc("DELETE /pelicula/{peliculaId}", s.autenticado(s.handleEliminarPelicula))
	mux.HandleFunc("DELETE /{$}", s.autenticado(s.handleVaciar))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return conRequestID(c.Handler(mux))
}

func (s *Server) handleObtenerCarrito(w http.ResponseWriter, r *http.Request, usuarioID string) {
	detalle, err := s.service.ObtenerCarrito(r.Context(), usuarioID)
	if err != nil {
		responderError(w, err)
		return
	}
	responderJSON(w, http.StatusOK, detalle)
}

func (s *Server) handleAgregarPelicula(w http.ResponseWriter, r *http.Request, usuarioID string) {
	peliculaID, ok := peliculaIDDeRuta(w, r)
	if !ok {
		return
	}
	info, err := s.service.AgregarPeliculaAlCarrito(r.Context(), peliculaID, usuarioID)
	if err != nil {
		responderError(w, err)
		return
	}
	responderJSON(w, http.StatusOK, info)
}

func (s *Server) handleActualizarCantidad(w http.ResponseWriter, r *http.Request, usuarioID string) {
	peliculaID, ok := peliculaIDDeRuta(w, r)
	if !ok {
		return
	}
	var body struct {
		Cantidad int `json:"cantidad"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpError(w, http.StatusBadRequest, "cuerpo inválido")
		return
	}
	info, err := s.service.ActualizarCantidadPelicula(r.Context(), peliculaID, body.Cantidad, usuarioID)
	if err != nil {
		responderError(w, err)
		return
	}
	responderJSON(w, http.StatusOK, info)
}

func (s *Server) handleEliminarPelicula(w http.ResponseWriter, r *http.Request, usuarioID string) {
	peliculaID, ok := peliculaIDDeRuta(w, r)
	if !ok {
		return
	}
	info, err := s.service.EliminarPeliculaDelCarrito(r.Context(), peliculaID, usuarioID)
	if err != nil {
		responderError(w, err)
		return
	}
	responderJSON(w, http.StatusOK, info)
}

func (s *Server) handleVaciar(w http.ResponseWriter, r *http.Request, usuarioID string) {
	info, err := s.service.VaciarCarrito(r.Context(), usuarioID)
	if err != nil {
		responderError(w, err)
		return
	}
	responderJSON(w, http.StatusOK, info)
}

// autenticado verifica el bearer token (HMAC) y pasa el subject como id de
// usuario al handler.
func (s *Server) autenticado(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefijo = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefijo) {
			httpError(w, http.StatusUnauthorized, "token requerido")
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(auth, prefijo), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			httpError(w, http.StatusUnauthorized, "token inválido")
			return
		}
		usuarioID, err := token.Claims.GetSubject()
		if err != nil || usuarioID == "" {
			httpError(w, http.StatusUnauthorized, "token sin subject")
			return
		}
		next(w, r, usuarioID)
	}
}

func peliculaIDDeRuta(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("peliculaId"), 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "peliculaId inválido")
		return 0, false
	}
	return id, true
}

func responderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPeliculaNoEncontrada):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCantidadInvalida),
		errors.Is(err, ErrUsuarioInvalido),
		errors.Is(err, ErrPeliculaNula),
		errors.Is(err, ErrPeliculaInvalida),
		errors.Is(err, ErrCarritoVacio):
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		var pe *ErrorPersistencia
		if errors.As(err, &pe) {
			log.Error().Err(err).Str("op", pe.Op).Msg("falla de persistencia")
		} else {
			log.Error().Err(err).Msg("error no clasificado")
		}
		httpError(w, http.StatusInternalServerError, "error interno")
	}
}

func responderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func httpError(w http.ResponseWriter, status int, mensaje string) {
	responderJSON(w, status, map[string]string{"error": mensaje})
}

func conRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		inicio := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("request_id", id).Str("method", r.Method).
			Str("path", r.URL.Path).Dur("elapsed", time.Since(inicio)).Msg("http")
	})
}
