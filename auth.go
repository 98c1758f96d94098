package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log"
	"math/big"
	"net/http"
	"strconv"
	"strings"
)

const sessionCookieName = "mafia_session"

func generateSecretCode() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func setSessionCookie(w http.ResponseWriter, playerID int64) {
	tokenBig, _ := rand.Int(rand.Reader, big.NewInt(1<<62))
	token := tokenBig.Int64()

	db.Exec("INSERT INTO session (token, player_id) VALUES (?, ?)", token, playerID)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    strconv.FormatInt(token, 10),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func getPlayerIdFromSession(r *http.Request) (int64, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return -1, err
	}

	token, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil {
		return -1, err
	}

	var playerID int64
	err = db.Get(&playerID, "SELECT player_id FROM session WHERE token = ?", token)
	if err != nil {
		return -1, err
	}

	return playerID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type authRequest struct {
	Name       string `json:"name"`
	SecretCode string `json:"secret_code"`
}

type authResponse struct {
	PlayerID   int64  `json:"player_id"`
	Name       string `json:"name"`
	SecretCode string `json:"secret_code,omitempty"`
	Guest      bool   `json:"is_guest,omitempty"`
}

func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req authRequest
	json.NewDecoder(r.Body).Decode(&req)
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		writeJSONError(w, http.StatusBadRequest, "Name must be at least 3 characters")
		return
	}

	var existing User
	err := db.Get(&existing, "SELECT rowid as id, name, secret_code, wins, losses FROM user WHERE name = ?", name)
	if err == nil {
		writeJSONError(w, http.StatusConflict, "Name already taken. Use login with secret code if this is you.")
		return
	}
	if err != sql.ErrNoRows {
		logError("handleSignup: db.Get user", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	secretCode, err := generateSecretCode()
	if err != nil {
		logError("handleSignup: generateSecretCode", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	result, err := db.Exec("INSERT INTO user (name, secret_code) VALUES (?, ?)", name, secretCode)
	if err != nil {
		logError("handleSignup: db.Exec insert user", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	playerID, _ := result.LastInsertId()
	log.Printf("New user created: name='%s', id=%d", name, playerID)
	DebugLog("handleSignup", "User '%s' signed up with ID %d", name, playerID)

	setSessionCookie(w, playerID)
	writeJSON(w, http.StatusCreated, authResponse{PlayerID: playerID, Name: name, SecretCode: secretCode})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req authRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.Name == "" || req.SecretCode == "" {
		writeJSONError(w, http.StatusBadRequest, "Name and secret code are required")
		return
	}

	var user User
	err := db.Get(&user, "SELECT rowid as id, name, secret_code, wins, losses FROM user WHERE name = ? AND secret_code = ?", req.Name, req.SecretCode)
	if err == sql.ErrNoRows {
		writeJSONError(w, http.StatusUnauthorized, "Invalid name or secret code")
		return
	}
	if err != nil {
		logError("handleLogin: db.Get user", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	log.Printf("User logged in: name='%s', id=%d", user.Name, user.ID)
	setSessionCookie(w, user.ID)
	writeJSON(w, http.StatusOK, authResponse{PlayerID: user.ID, Name: user.Name})
}

// handleGuest creates a throwaway account so players can join without
// signing up.
func handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	suffix, err := generateSecretCode()
	if err != nil {
		logError("handleGuest: generateSecretCode", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	name := "Guest_" + strings.ToUpper(suffix[:6])

	secretCode, err := generateSecretCode()
	if err != nil {
		logError("handleGuest: generateSecretCode", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	result, err := db.Exec("INSERT INTO user (name, secret_code) VALUES (?, ?)", name, secretCode)
	if err != nil {
		logError("handleGuest: db.Exec insert user", err)
		writeJSONError(w, http.StatusInternalServerError, "Guest login failed")
		return
	}

	playerID, _ := result.LastInsertId()
	log.Printf("Guest user created: name='%s', id=%d", name, playerID)

	setSessionCookie(w, playerID)
	writeJSON(w, http.StatusCreated, authResponse{PlayerID: playerID, Name: name, SecretCode: secretCode, Guest: true})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	playerID, _ := getPlayerIdFromSession(r)

	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		token, _ := strconv.ParseInt(cookie.Value, 10, 64)
		db.Exec("DELETE FROM session WHERE token = ?", token)
	}

	log.Printf("User logged out: id=%d", playerID)
	DebugLog("handleLogout", "Player %d logged out", playerID)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
