package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/footstock/api-server/internals/auth"
	"github.com/footstock/api-server/internals/leaderboard"
	"github.com/footstock/api-server/internals/matchweek"
	"github.com/footstock/api-server/internals/players"
	"github.com/footstock/api-server/internals/portfolio"
	"github.com/footstock/api-server/internals/store"
)

var (
	ErrCouldNotParseBody = errors.New("could not parse request body")
	ErrCouldNotReadBody  = errors.New("could not read request body")
)

type httpResp struct {
	Status  int         `json:"status"`
	IsError bool        `json:"is_error"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func getBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ErrCouldNotReadBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrCouldNotParseBody
	}
	return nil
}

func sendResponse(rw http.ResponseWriter, resp httpResp) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(resp.Status)
	out, err := json.Marshal(resp)
	if err != nil {
		rw.Write([]byte(`{"status": 500, "is_error": true, "error": "could not marshal response"}`))
		return
	}
	rw.Write(out)
}

// statusOf maps service sentinel errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, portfolio.ErrInvalidQuantity),
		errors.Is(err, portfolio.ErrInsufficientFunds),
		errors.Is(err, portfolio.ErrInsufficientHoldings),
		errors.Is(err, players.ErrMissingFields),
		errors.Is(err, players.ErrInvalidPosition),
		errors.Is(err, players.ErrMissingMatchweek),
		errors.Is(err, players.ErrInvalidRating),
		errors.Is(err, matchweek.ErrMissingFields),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, ErrCouldNotParseBody),
		errors.Is(err, ErrCouldNotReadBody):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, portfolio.ErrAccountNotFound),
		errors.Is(err, portfolio.ErrPlayerNotFound),
		errors.Is(err, portfolio.ErrHoldingNotFound),
		errors.Is(err, players.ErrPlayerNotFound),
		errors.Is(err, matchweek.ErrNotFound),
		errors.Is(err, leaderboard.ErrUserNotRanked):
		return http.StatusNotFound
	case errors.Is(err, matchweek.ErrNotActive),
		errors.Is(err, matchweek.ErrDuplicateWeek),
		errors.Is(err, players.ErrPlayerHeld),
		errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func sendError(rw http.ResponseWriter, err error) {
	sendResponse(rw, httpResp{Status: statusOf(err), IsError: true, Error: err.Error()})
}
