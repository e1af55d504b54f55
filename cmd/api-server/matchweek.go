package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/footstock/api-server/internals/matchweek"
)

func (app *App) CreateMatchweek(w http.ResponseWriter, r *http.Request) {
	var req matchweek.CreateMatchweekRequest
	if err := getBody(r, &req); err != nil {
		sendError(w, err)
		return
	}

	mw, err := app.Matchweeks.Create(r.Context(), req)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: mw})
}

func (app *App) CompleteMatchweek(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "weekNumber"))
	if err != nil {
		sendResponse(w, httpResp{Status: http.StatusBadRequest, IsError: true, Error: "weekNumber must be an integer"})
		return
	}

	mw, err := app.Matchweeks.Complete(r.Context(), week)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: mw})
}

func (app *App) GetActiveMatchweek(w http.ResponseWriter, r *http.Request) {
	mw, err := app.Matchweeks.GetActive(r.Context())
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: mw})
}
