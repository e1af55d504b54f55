package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/footstock/api-server/internals/players"
)

func (app *App) ListPlayers(w http.ResponseWriter, r *http.Request) {
	catalog, err := app.Players.ListPlayers(r.Context())
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: catalog})
}

func (app *App) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := app.Players.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: player})
}

func (app *App) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := app.Players.GetPriceHistory(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: history})
}

func (app *App) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.CreatePlayerRequest
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	player, err := app.Players.CreatePlayer(r.Context(), req)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: player})
}

func (app *App) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.UpdatePlayerRequest
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	player, err := app.Players.UpdatePlayer(r.Context(), chi.URLParam(r, "playerID"), req)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: player})
}

func (app *App) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := app.Players.DeletePlayer(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: map[string]interface{}{"message": "Player deleted successfully"}})
}

func (app *App) SubmitStats(w http.ResponseWriter, r *http.Request) {
	var req players.SubmitStatsRequest
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	result, err := app.Players.SubmitStats(r.Context(), chi.URLParam(r, "playerID"), req)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: result})
}
