package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Messages writes a bare JSON array of messages, the shape login and account
// creation use for validation failures.
func Messages(w http.ResponseWriter, status int, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	JSON(w, status, messages)
}

// Text writes a plain-text body.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("respond: write text failed: %v", err)
	}
}

// Status writes the status code with an empty body, used for internal errors.
func Status(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
