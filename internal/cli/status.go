package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cocinafacil/tcf/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show health of the running tcf server",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("server not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close()

	var body struct {
		Healthy bool `json:"healthy"`
		Checks  []struct {
			Name    string `json:"name"`
			Healthy bool   `json:"healthy"`
			Error   string `json:"error,omitempty"`
		} `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	overall := "healthy"
	if !body.Healthy {
		overall = "unhealthy"
	}
	fmt.Printf("Status: %s\n", overall)
	for _, c := range body.Checks {
		mark := "ok"
		if !c.Healthy {
			mark = "FAIL"
		}
		if c.Error != "" {
			fmt.Printf("  %-14s %-4s %s\n", c.Name, mark, c.Error)
		} else {
			fmt.Printf("  %-14s %s\n", c.Name, mark)
		}
	}
	return nil
}
