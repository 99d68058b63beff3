package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// defaultServer resolves the panel API address: the GRIDDECK_SERVER
// environment variable, or the daemon's default listen port.
func defaultServer() string {
	if v := os.Getenv("GRIDDECK_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// defaultHealthServer resolves the health listener address, which runs on
// its own port.
func defaultHealthServer() string {
	if v := os.Getenv("GRIDDECK_HEALTH_SERVER"); v != "" {
		return v
	}
	return "http://localhost:9090"
}

// apiError turns a non-success response into an error carrying the
// server's message when one was sent.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, payload.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
