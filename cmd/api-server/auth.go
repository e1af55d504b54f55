package main

import (
	"net/http"

	"github.com/footstock/api-server/internals/auth"
)

func (app *App) Login(w http.ResponseWriter, r *http.Request) {
	var loginDetails auth.LoginRequestBody
	if err := getBody(r, &loginDetails); err != nil {
		sendError(w, err)
		return
	}

	token, err := app.Auth.Login(r.Context(), loginDetails)
	if err != nil {
		sendError(w, err)
		return
	}

	sendResponse(w, httpResp{Status: http.StatusOK, Data: map[string]interface{}{"token": token, "message": "Logged in successfully"}})
}

func (app *App) SignUp(w http.ResponseWriter, r *http.Request) {
	var signupDetails auth.SignUpRequestBody
	if err := getBody(r, &signupDetails); err != nil {
		sendError(w, err)
		return
	}

	if err := app.Auth.SignUp(r.Context(), signupDetails); err != nil {
		sendError(w, err)
		return
	}

	sendResponse(w, httpResp{Status: http.StatusCreated, Data: map[string]interface{}{"message": "User created successfully"}})
}

func (app *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := app.Auth.Logout(userIDFrom(r), tokenFrom(r)); err != nil {
		sendError(w, err)
		return
	}

	sendResponse(w, httpResp{Status: http.StatusOK, Data: map[string]interface{}{"message": "Logged out successfully"}})
}
