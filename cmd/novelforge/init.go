package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novelforge/novelforge/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and a default config file",
	Long: `Create the novelforge home directory layout and write a default
config.yaml with documented settings.

Examples:
  novelforge init                       # ~/.novelforge/config.yaml
  novelforge init --home /srv/nf        # custom home directory
  novelforge init --force               # overwrite an existing config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := setupHome()
		if err != nil {
			return err
		}

		if h.ConfigExists() && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("Initialized %s\n", h.Path())
		fmt.Printf("Config written to %s\n", h.ConfigPath())
		fmt.Println("Set NOVELFORGE_BOT_TOKEN (or edit telegram.bot_token) before running serve.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
}
