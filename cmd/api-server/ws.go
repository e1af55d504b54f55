package main

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/footstock/api-server/internals/players"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket registers the client for live price updates. The
// connection stays in the pool until the peer goes away.
func (app *App) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Could not open websocket connection", http.StatusBadRequest)
		return
	}

	app.ClientsM.Lock()
	app.WS[conn] = true
	app.ClientsM.Unlock()

	defer func() {
		conn.Close()
		app.ClientsM.Lock()
		delete(app.WS, conn)
		app.ClientsM.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// consumePriceUpdates binds an exclusive queue to the price_updates
// fanout exchange and relays every message to the connected clients.
func (app *App) consumePriceUpdates() {
	q, err := app.Ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	failOnError(err, "Failed to declare a queue")

	err = app.Ch.QueueBind(
		q.Name,
		"", // routing key
		players.PriceUpdatesExchange,
		false,
		nil,
	)
	failOnError(err, "Failed to bind a queue")

	msgs, err := app.Ch.Consume(
		q.Name,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	failOnError(err, "Failed to register a consumer")

	for d := range msgs {
		app.broadcast(d.Body)
	}
}

func (app *App) broadcast(msg []byte) {
	app.ClientsM.Lock()
	defer app.ClientsM.Unlock()

	for conn := range app.WS {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("ws: dropping client: %v", err)
			conn.Close()
			delete(app.WS, conn)
		}
	}
}
