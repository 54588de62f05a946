// Package cmd contains all CLI commands for ctf-admin.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/backend"
	"github.com/ctfplayground/backend/internal/service"
	"github.com/ctfplayground/backend/internal/storage"
	"github.com/ctfplayground/backend/pkg/config"
)

var (
	// Global flags
	configFile string
)

// openServices loads configuration and connects straight to storage.
// The CLI bypasses the HTTP API so it can bootstrap the first admin
// account before any login is possible.
func openServices(ctx context.Context) (*service.Services, storage.Store, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := backend.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	services := service.NewServices(store, cfg, nil, zap.NewNop())
	return services, store, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// printTable prints data in a simple table format
func printTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Printf("%-*s  ", widths[i], h)
	}
	fmt.Println()

	for i := range headers {
		fmt.Printf("%s  ", strings.Repeat("-", widths[i]))
	}
	fmt.Println()

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Printf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Println()
	}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ctf-admin",
	Short: "CLI tool for managing the CTF backend",
	Long: `ctf-admin is a command-line tool for managing the CTF competition
backend through direct storage access.

It provides commands for:
  - Admins: bootstrap administrative accounts
  - Teams: register teams and list registrations
  - Challenges: inspect the challenge catalog

Examples:
  # Create the first admin account
  ctf-admin admin create --name "Jury" --email jury@example.org --password s3cret

  # Register a team and print its generated credentials
  ctf-admin team register --name "Team Rocket" --leader "Jessie:jessie@example.org"

  # List all teams
  ctf-admin team list`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(challengeCmd)
}
