package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay-keys",
	Short: "Relay API key provisioning service",
	Long:  `A microservice that issues and validates relay API keys over a signed webhook endpoint, with optional Feishu notifications.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
