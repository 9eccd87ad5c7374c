package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tutormatch_backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "tutormatch",
	Short: "Tutor matching backend API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run()
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate()
	},
}

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first admin account if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Seed(seedEmail, seedPassword)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "admin email (defaults to config admin.email)")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "admin password (defaults to config admin.password)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
