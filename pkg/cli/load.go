package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"github.com/griddeck/griddeck/pkg/plugins"
)

func newLoadCommand() *Command {
	cmd := &Command{
		Name:        "load",
		Description: "Load an installed application",
		Flags:       flag.NewFlagSet("load", flag.ExitOnError),
		Run:         runLoad,
	}

	cmd.Flags.String("app", "", "Application id")
	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runLoad(args []string) error {
	cmd := newLoadCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app := cmd.Flags.Lookup("app").Value.String()
	server := cmd.Flags.Lookup("server").Value.String()

	if app == "" {
		return fmt.Errorf("app is required")
	}

	resp, err := http.Post(fmt.Sprintf("%s/api/v1/applications/%s/load", server, app), "", nil)
	if err != nil {
		return fmt.Errorf("failed to load application: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var summary plugins.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return fmt.Errorf("failed to decode application summary: %w", err)
	}

	fmt.Printf("Loaded application %s v%s (%s)\n", summary.ID, summary.Version, summary.DisplayName)
	return nil
}
