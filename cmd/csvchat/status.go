package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a csvchat server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			printStatus("Config", colorize(colorRed, "error: %v"), err)
			return nil
		}

		serverURL, _ := cmd.Flags().GetString("server")
		if serverURL == "" {
			serverURL = "http://" + cfg.Addr()
		}

		client := newAPIClient(serverURL, cfg.Server.APIToken)
		client.httpClient.Timeout = 2 * time.Second
		printStatus("Server", "%s", serverStatus(context.Background(), client))
		printStatus("Profile", "%s", cfg.Dataset.Profile)
		switch cfg.Dataset.Format {
		case "sql":
			printStatus("Dataset", "%s table %s", cfg.Dataset.Driver, cfg.Dataset.Table)
		default:
			printStatus("Dataset", "%s", cfg.Dataset.Path)
		}
		return nil
	},
}

func serverStatus(ctx context.Context, c *apiClient) string {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return "stopped"
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Sprintf("error (HTTP %d)", resp.StatusCode)
	}
	return "running at " + c.baseURL
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the csvchat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("csvchat version %s\n", version)
	},
}

func init() {
	statusCmd.Flags().String("server", "", "server URL to probe (default from server.host and server.port)")
}
