package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/config"
	"github.com/hakim/domainvet/internal/storage"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize domainvet with default configuration",
	Long: `Creates a default configuration file (domainvet.yaml), the output directory,
and the database used to store run history.

This is typically the first command you run when setting up domainvet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := filepath.Join(initDir, defaultConfigFile)

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		// Create default config
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created %s with default configuration\n", configPath)

		// Load the config we just created to get paths
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Create output directory
		if err := storage.EnsureDir(c.OutputDir); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		fmt.Printf("Created output directory: %s\n", c.OutputDir)

		// Initialize database
		store, err := storage.NewStore(c.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		fmt.Printf("Initialized database: %s\n", c.DBPath)

		fmt.Println()
		fmt.Println("DomainVet initialized successfully!")
		fmt.Println("Run 'domainvet check' to verify your nameservers.")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
