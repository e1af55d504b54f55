package main

import (
	"net/http"
	"strconv"
)

func (app *App) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendResponse(w, httpResp{Status: http.StatusBadRequest, IsError: true, Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := app.Leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: entries})
}

func (app *App) GetUserRank(w http.ResponseWriter, r *http.Request) {
	entry, err := app.Leaderboard.GetUserRank(r.Context(), userIDFrom(r))
	if err != nil {
		sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: entry})
}
