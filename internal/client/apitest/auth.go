package apitest

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(r, &in) || in.Username == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	a.mu.Lock()
	u, ok := a.users[in.Username]
	a.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	a.mu.Lock()
	tok, err := a.tokenLocked(u)
	a.mu.Unlock()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   tok,
		"user":    u.User,
	})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(r, &in) || in.Username == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.users[in.Username]; exists {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}

	created := a.addUserLocked(in.Username, in.Email, hash)
	out := map[string]any{
		"message": "User created successfully",
		"user":    created,
	}
	if a.registerIssuesToken {
		tok, err := a.tokenLocked(a.users[in.Username])
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		out["token"] = tok
	}

	writeJSON(w, http.StatusCreated, out)
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if !decodeBody(r, &in) || in.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "Token required"})
		return
	}

	u, err := a.userFromToken(in.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": u})
}
