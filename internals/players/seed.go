package players

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/rand"

	"github.com/footstock/api-server/internals/models"
)

var samplePlayers = []struct {
	Name     string
	Team     string
	Position string
	Price    float64
}{
	{"Erling Haaland", "Manchester City", models.PositionFWD, 5000},
	{"Mohamed Salah", "Liverpool", models.PositionFWD, 4500},
	{"Harry Kane", "Bayern Munich", models.PositionFWD, 4200},
	{"Kylian Mbappé", "Real Madrid", models.PositionFWD, 5500},
	{"Robert Lewandowski", "Barcelona", models.PositionFWD, 4000},
	{"Victor Osimhen", "Napoli", models.PositionFWD, 3800},
	{"Darwin Núñez", "Liverpool", models.PositionFWD, 3500},
	{"Julian Alvarez", "Manchester City", models.PositionFWD, 3200},
	{"Kevin De Bruyne", "Manchester City", models.PositionMID, 4500},
	{"Bruno Fernandes", "Manchester United", models.PositionMID, 3800},
	{"Martin Ødegaard", "Arsenal", models.PositionMID, 3600},
	{"Jude Bellingham", "Real Madrid", models.PositionMID, 4200},
	{"Rodri", "Manchester City", models.PositionMID, 3500},
	{"Declan Rice", "Arsenal", models.PositionMID, 3400},
	{"Bernardo Silva", "Manchester City", models.PositionMID, 3700},
	{"Phil Foden", "Manchester City", models.PositionMID, 3600},
	{"Virgil van Dijk", "Liverpool", models.PositionDEF, 3500},
	{"Rúben Dias", "Manchester City", models.PositionDEF, 3300},
	{"William Saliba", "Arsenal", models.PositionDEF, 3200},
	{"Antonio Rüdiger", "Real Madrid", models.PositionDEF, 3000},
	{"Trent Alexander-Arnold", "Liverpool", models.PositionDEF, 3400},
	{"Kyle Walker", "Manchester City", models.PositionDEF, 2800},
	{"Josko Gvardiol", "Manchester City", models.PositionDEF, 3100},
	{"Ben White", "Arsenal", models.PositionDEF, 2900},
	{"Alisson", "Liverpool", models.PositionGK, 3000},
	{"Ederson", "Manchester City", models.PositionGK, 2900},
	{"David Raya", "Arsenal", models.PositionGK, 2600},
	{"Thibaut Courtois", "Real Madrid", models.PositionGK, 2700},
	{"André Onana", "Manchester United", models.PositionGK, 2500},
	{"Mike Maignan", "AC Milan", models.PositionGK, 2600},
}

const playerIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func generatePlayerID() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = playerIDCharset[rand.Intn(len(playerIDCharset))]
	}
	return string(b)
}

// Seed inserts the sample catalog. Players already present (same name)
// are left alone, so reseeding an existing database is safe.
func (s *PlayerService) Seed(ctx context.Context) error {
	rand.Seed(uint64(time.Now().UnixNano()))

	existing, err := s.Store.ListPlayers(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}

	seeded := 0
	for _, sp := range samplePlayers {
		if known[sp.Name] {
			continue
		}
		player := &models.Player{
			PlayerID:     generatePlayerID(),
			Name:         sp.Name,
			Team:         sp.Team,
			Position:     sp.Position,
			CurrentPrice: sp.Price,
			InitialPrice: sp.Price,
			LastUpdated:  time.Now(),
		}
		if err := s.Store.CreatePlayer(ctx, player); err != nil {
			return fmt.Errorf("seeding %s: %w", sp.Name, err)
		}
		s.recordPricePoint(player.PlayerID, player.CurrentPrice)
		seeded++
	}

	log.Printf("players: seeded %d players (%d already present)", seeded, len(existing))
	return nil
}
