package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:          "eventctl",
		Short:        "CLI client for the event finder REST API",
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Event service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", os.Getenv("EVENTCTL_TOKEN"), "Session token (defaults to $EVENTCTL_TOKEN)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
