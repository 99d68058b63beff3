package cli

import (
	"flag"
	"fmt"
	"net/http"
)

func newUninstallCommand() *Command {
	cmd := &Command{
		Name:        "uninstall",
		Description: "Uninstall a loaded application",
		Flags:       flag.NewFlagSet("uninstall", flag.ExitOnError),
		Run:         runUninstall,
	}

	cmd.Flags.String("app", "", "Application id")
	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runUninstall(args []string) error {
	cmd := newUninstallCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app := cmd.Flags.Lookup("app").Value.String()
	server := cmd.Flags.Lookup("server").Value.String()

	if app == "" {
		return fmt.Errorf("app is required")
	}

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/applications/%s", server, app), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to uninstall application: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}

	fmt.Printf("Uninstalled application %s\n", app)
	return nil
}
