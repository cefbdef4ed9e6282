// Package main implements the twinctl CLI for operating the digital twin.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the twind HTTP server
	serverURL string
	// configPath points at the twind config file
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "twinctl",
	Short: "CLI for the twind digital twin",
	Long: `twinctl is a command-line interface for the twind digital twin.
It builds the document index, chats with the twin locally, and talks to
a running twind server.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8800", "twind server URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healthCmd)
}

// askCmd sends one question to a running server
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the twin a question via a running twind server",
	Long: `Ask sends one question to a running twind server and prints the answer.

Examples:
  # Ask a question
  twinctl ask "Where did she study?"

  # Use a different server
  twinctl ask --server http://localhost:8080 "What has she built?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check twind server health",
	Long: `Check the health status of a running twind server.

Examples:
  # Check health
  twinctl health

  # Check health on a different server
  twinctl health --server http://localhost:8080`,
	RunE: runHealth,
}

// AskRequest matches internal/http/server.go AskRequest
type AskRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// AskResponse matches internal/http/server.go AskResponse
type AskResponse struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

// runAsk handles the ask command
func runAsk(cmd *cobra.Command, args []string) error {
	var resp AskResponse
	err := postJSON(serverURL+"/api/ask", AskRequest{Question: args[0], UserID: "twinctl"}, &resp)
	if err != nil {
		return err
	}

	fmt.Println(resp.Text)
	if resp.Audio != "" {
		fmt.Fprintf(os.Stderr, "(audio: %d hex chars)\n", len(resp.Audio))
	}
	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server: %s\nStatus: %s\n", serverURL, health.Status)
	return nil
}
