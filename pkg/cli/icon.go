package cli

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

func newIconCommand() *Command {
	cmd := &Command{
		Name:        "icon",
		Description: "Fetch an application icon rendition",
		Flags:       flag.NewFlagSet("icon", flag.ExitOnError),
		Run:         runIcon,
	}

	cmd.Flags.String("app", "", "Application id")
	cmd.Flags.String("rendition", "smallGridIcon", "Rendition name")
	cmd.Flags.String("out", "", "Output file (defaults to <app>-<rendition>.webp)")
	cmd.Flags.String("server", defaultServer(), "Panel API URL")

	return cmd
}

func runIcon(args []string) error {
	cmd := newIconCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app := cmd.Flags.Lookup("app").Value.String()
	rendition := cmd.Flags.Lookup("rendition").Value.String()
	out := cmd.Flags.Lookup("out").Value.String()
	server := cmd.Flags.Lookup("server").Value.String()

	if app == "" {
		return fmt.Errorf("app is required")
	}
	if out == "" {
		out = fmt.Sprintf("%s-%s.webp", app, rendition)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/applications/%s/icons/%s", server, app, rendition))
	if err != nil {
		return fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read icon bytes: %w", err)
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("Saved %s %s (%d bytes) to %s\n", app, rendition, len(data), out)
	return nil
}
