package main

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	service  *CarritoService
}

func NewRabbit(url, exchange string, service *CarritoService) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange, service: service}, nil
}

func (r *Rabbit) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// StartConsumer ata la cola de películas agregadas al exchange y procesa
// cada mensaje en una goroutine hasta que el canal se cierra.
func (r *Rabbit) StartConsumer(ctx context.Context) error {
	q, err := r.ch.QueueDeclare(QPeliculaAgregada, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := r.ch.QueueBind(q.Name, RKPeliculaAgregada, r.exchange, false, nil); err != nil {
		return err
	}

	tag := "carrito-" + uuid.NewString()
	msgs, err := r.ch.Consume(q.Name, tag, false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for m := range msgs {
			if err := r.handlePeliculaAgregada(ctx, m.Body); err != nil {
				log.Error().Err(err).Str("rk", m.RoutingKey).Msg("pelicula agregada: handler error")
			}
			// Ack siempre: el sync es idempotente, reentregar un mensaje
			// malo o repetido no cambia nada.
			_ = m.Ack(false)
		}
		log.Info().Str("queue", q.Name).Msg("consumer detenido")
	}()
	return nil
}

func (r *Rabbit) handlePeliculaAgregada(ctx context.Context, body []byte) error {
	var evt PeliculaAgregadaEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	log.Info().Int64("id", evt.ID).Str("nombre", evt.Nombre).
		Msg("película recibida del catálogo")
	return r.service.SincronizarPelicula(ctx, evt.ID, evt.Nombre, evt.Precio)
}
