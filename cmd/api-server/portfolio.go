package main

import (
	"net/http"
	"strconv"
)

type tradeRequestBody struct {
	PlayerID string `json:"player_id"`
	Quantity int    `json:"quantity"`
}

func (app *App) BuyPlayers(w http.ResponseWriter, r *http.Request) {
	var req tradeRequestBody
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	result, err := app.Portfolio.Buy(r.Context(), userIDFrom(r), req.PlayerID, req.Quantity)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: result})
}

func (app *App) SellPlayers(w http.ResponseWriter, r *http.Request) {
	var req tradeRequestBody
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	result, err := app.Portfolio.Sell(r.Context(), userIDFrom(r), req.PlayerID, req.Quantity)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: result})
}

func (app *App) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	detailed, err := app.Portfolio.GetDetailedPortfolio(r.Context(), userIDFrom(r))
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: detailed})
}

func (app *App) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendResponse(w, httpResp{Status: http.StatusBadRequest, IsError: true, Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	txns, err := app.Portfolio.GetTransactions(r.Context(), userIDFrom(r), limit)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: txns})
}
