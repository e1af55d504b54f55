package main

import (
	"errors"
	"net/http"

	"github.com/footstock/api-server/internals/leaderboard"
)

type profileResponse struct {
	UserID     int     `json:"user_id"`
	UserName   string  `json:"user_name"`
	MailID     string  `json:"mail_id"`
	ProfilePic string  `json:"profile_pic"`
	Balance    float64 `json:"balance"`
	Rank       int     `json:"rank,omitempty"`
}

func (app *App) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	user, err := app.Store.GetUser(r.Context(), userID)
	if err != nil {
		sendError(w, err)
		return
	}
	account, err := app.Store.GetAccount(r.Context(), userID)
	if err != nil {
		sendError(w, err)
		return
	}

	resp := profileResponse{
		UserID:     user.UserID,
		UserName:   user.UserName,
		MailID:     user.MailID,
		ProfilePic: user.ProfilePic,
		Balance:    account.Balance,
	}

	entry, err := app.Leaderboard.GetUserRank(r.Context(), userID)
	if err != nil && !errors.Is(err, leaderboard.ErrUserNotRanked) {
		sendError(w, err)
		return
	}
	if err == nil {
		resp.Rank = entry.Rank
	}

	sendResponse(w, httpResp{Status: http.StatusOK, Data: resp})
}
