package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cocinafacil/tcf/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveChefURL, "chef-url", "", "Chef service base URL (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveChefURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tcf API server",
	Long:  `Start the REST API server at localhost:3001.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveChefURL != "" {
		cfg.Chef.URL = serveChefURL
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}

	return d.Serve(context.Background())
}
