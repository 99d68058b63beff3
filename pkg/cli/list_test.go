package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/griddeck/griddeck/pkg/api"
	"github.com/griddeck/griddeck/pkg/plugins"
)

func TestListCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/applications", r.URL.Path)

		json.NewEncoder(w).Encode(api.ListApplicationsResponse{
			Applications: []plugins.Summary{
				{ID: "uk-example-files", DisplayName: "Files", Version: "1.2"},
				{ID: "uk-example-calendar", DisplayName: "Calendar", Version: "2.0"},
			},
			Count: 2,
		})
	}))
	defer server.Close()

	output, err := captureStdout(t, func() error {
		return runList([]string{"-server", server.URL})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "uk-example-files")
	assert.Contains(t, output, "Calendar")
	assert.Contains(t, output, "2 application(s) loaded")
}

func TestListCommand_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ListApplicationsResponse{Applications: []plugins.Summary{}})
	}))
	defer server.Close()

	output, err := captureStdout(t, func() error {
		return runList([]string{"-server", server.URL})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "No applications loaded")
}

func TestListCommand_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "store is down"})
	}))
	defer server.Close()

	err := runList([]string{"-server", server.URL})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store is down")
}

func TestListCommand_Unreachable(t *testing.T) {
	err := runList([]string{"-server", "http://127.0.0.1:1"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list applications")
}
