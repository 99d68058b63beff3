package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/griddeck/griddeck/pkg/api"
)

func newPinsCommand() *Command {
	cmd := &Command{
		Name:        "pins",
		Description: "Show or replace a user's pinned applications",
		Flags:       flag.NewFlagSet("pins", flag.ExitOnError),
		Run:         runPins,
	}

	cmd.Flags.String("user", "", "Username")
	cmd.Flags.String("set", "", "Comma-separated application ids to pin, in order")
	cmd.Flags.Bool("clear", false, "Remove all pins")
	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runPins(args []string) error {
	cmd := newPinsCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	user := cmd.Flags.Lookup("user").Value.String()
	set := cmd.Flags.Lookup("set").Value.String()
	clear := cmd.Flags.Lookup("clear").Value.String() == "true"
	server := cmd.Flags.Lookup("server").Value.String()

	if user == "" {
		return fmt.Errorf("user is required")
	}
	if set != "" && clear {
		return fmt.Errorf("set and clear are mutually exclusive")
	}

	target := fmt.Sprintf("%s/api/v1/users/%s/pins", server, user)

	var resp *http.Response
	var err error

	if set != "" || clear {
		ids := []string{}
		if set != "" {
			for _, id := range strings.Split(set, ",") {
				ids = append(ids, strings.TrimSpace(id))
			}
		}

		body, merr := json.Marshal(api.SetPinsRequest{AppIDs: ids})
		if merr != nil {
			return fmt.Errorf("failed to encode pin list: %w", merr)
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

	var pins api.PinsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pins); err != nil {
		return fmt.Errorf("failed to decode pin list: %w", err)
	}

	if len(pins.Applications) == 0 {
		fmt.Printf("No pins for %s\n", pins.Username)
		return nil
	}

	fmt.Printf("Pins for %s:\n", pins.Username)
	for i, app := range pins.Applications {
		fmt.Printf("  %d. %-24s %s\n", i+1, app.ID, app.DisplayName)
	}

	return nil
}
