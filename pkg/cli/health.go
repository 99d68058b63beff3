package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sort"

	"github.com/griddeck/griddeck/pkg/observability"
)

func newHealthCommand() *Command {
	cmd := &Command{
		Name:        "health",
		Description: "Show panel health",
		Flags:       flag.NewFlagSet("health", flag.ExitOnError),
		Run:         runHealth,
	}

	cmd.Flags.String("server", defaultHealthServer(), "Panel health URL")

	return cmd
}

func runHealth(args []string) error {
	cmd := newHealthCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	server := cmd.Flags.Lookup("server").Value.String()

	resp, err := http.Get(fmt.Sprintf("%s/health", server))
	if err != nil {
		return fmt.Errorf("failed to reach panel: %w", err)
	}
	defer resp.Body.Close()

	var status observability.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode health status: %w", err)
	}

	fmt.Printf("Status:  %s\n", status.Status)
	fmt.Printf("Version: %s\n", status.Version)

	names := make([]string, 0, len(status.Dependencies))
	for name := range status.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dep := status.Dependencies[name]
		line := fmt.Sprintf("  %-14s %s", name, dep.Status)
		if dep.LatencyMS > 0 {
			line += fmt.Sprintf(" (%dms)", dep.LatencyMS)
		}
		if dep.Message != "" {
			line += " - " + dep.Message
		}
		fmt.Println(line)
	}

	// Non-zero exit for scripts probing a dead panel.
	if status.Status == observability.StatusUnhealthy {
		return fmt.Errorf("panel reports unhealthy")
	}

	return nil
}
