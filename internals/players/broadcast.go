package players

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PriceUpdate is the message fanned out to websocket clients after a
// performance submission reprices a player.
type PriceUpdate struct {
	PlayerID           string  `json:"player_id"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChangePercent float64 `json:"price_change_percent"`
	MatchweekReturn    float64 `json:"matchweek_roi"`
}

type Publisher interface {
	PublishPriceUpdate(update PriceUpdate) error
}

// PriceUpdatesExchange is the fanout exchange price updates go through.
const PriceUpdatesExchange = "price_updates"

// AMQPPublisher publishes price updates to the fanout exchange. The
// api-server consumes them and pushes to connected websocket clients.
type AMQPPublisher struct {
	Ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(
		PriceUpdatesExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{Ch: ch}, nil
}

func (p *AMQPPublisher) PublishPriceUpdate(update PriceUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return p.Ch.Publish(
		PriceUpdatesExchange,
		"",    // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
