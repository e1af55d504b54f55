package main

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxToken  ctxKey = "token"
)

// Middleware authenticates the request and injects the caller's user id
// and session token into the request context.
func (app *App) Middleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		var token string
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}

		if token == "" {
			sendResponse(w, httpResp{Status: http.StatusUnauthorized, IsError: true, Error: "Unauthorized"})
			return
		}

		userID, err := app.Auth.ValidateToken(token)
		if err != nil {
			sendResponse(w, httpResp{Status: http.StatusUnauthorized, IsError: true, Error: "Unauthorized"})
			return
		}

		// A valid signature is not enough; a logged-out token is dead.
		if !app.Auth.CheckIfTokenIsWhiteListed(userID, token) {
			sendResponse(w, httpResp{Status: http.StatusUnauthorized, IsError: true, Error: "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func userIDFrom(r *http.Request) int {
	id, _ := r.Context().Value(ctxUserID).(int)
	return id
}

func tokenFrom(r *http.Request) string {
	token, _ := r.Context().Value(ctxToken).(string)
	return token
}
