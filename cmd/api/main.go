package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidytask/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tidytask",
		Short: "TidyTask API Server",
		Long:  `TidyTask is a personal task management system with categories, subtasks and calendar planning.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
