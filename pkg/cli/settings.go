package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/griddeck/griddeck/pkg/api"
)

func newSettingsCommand() *Command {
	cmd := &Command{
		Name:        "settings",
		Description: "Show or update panel settings",
		Flags:       flag.NewFlagSet("settings", flag.ExitOnError),
		Run:         runSettings,
	}

	cmd.Flags.String("set", "", "Setting to write, as key=value")
	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runSettings(args []string) error {
	cmd := newSettingsCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	set := cmd.Flags.Lookup("set").Value.String()
	server := cmd.Flags.Lookup("server").Value.String()

	target := fmt.Sprintf("%s/api/v1/panel/settings", server)

	var resp *http.Response
	var err error

	if set != "" {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return fmt.Errorf("set must be key=value, got %q", set)
		}

		body, merr := json.Marshal(api.UpdateSettingsRequest{
			Settings: map[string]string{key: value},
		})
		if merr != nil {
			return fmt.Errorf("failed to encode setting: %w", merr)
		}

		req, rerr := http.NewRequest(http.MethodPut, target, bytes.NewReader(body))
		if rerr != nil {
			return fmt.Errorf("failed to build request: %w", rerr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = http.DefaultClient.Do(req)
	} else {
		resp, err = http.Get(target)
	}
	if err != nil {
		return fmt.Errorf("failed to reach panel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var settings api.SettingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}

	if len(settings.Settings) == 0 {
		fmt.Println("No settings stored")
		return nil
	}

	keys := make([]string, 0, len(settings.Settings))
	for key := range settings.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%s=%s\n", key, settings.Settings[key])
	}

	return nil
}
