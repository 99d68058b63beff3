package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"github.com/griddeck/griddeck/pkg/api"
)

func newListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List loaded applications",
		Flags:       flag.NewFlagSet("list", flag.ExitOnError),
		Run:         runList,
	}

	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runList(args []string) error {
	cmd := newListCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	server := cmd.Flags.Lookup("server").Value.String()

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/applications", server))
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var list api.ListApplicationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("failed to decode application list: %w", err)
	}

	if list.Count == 0 {
		fmt.Println("No applications loaded")
		return nil
	}

	fmt.Printf("%-24s %-10s %s\n", "ID", "VERSION", "NAME")
	for _, app := range list.Applications {
		fmt.Printf("%-24s %-10s %s\n", app.ID, app.Version, app.DisplayName)
	}
	fmt.Printf("\n%d application(s) loaded\n", list.Count)

	return nil
}
