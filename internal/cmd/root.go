package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile       string
	agentOverride string
)

var rootCmd = &cobra.Command{
	Use:   "labelagent",
	Short: "Conversational agent that collects NFT label details and mints them on Starknet",
	Long: `labelagent talks to a participant, collects the name, description and
recipient address of an NFT label, pins the metadata to IPFS through Pinata
and mints the label on a Starknet contract once everything is known.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&agentOverride, "agent", "", "agent id (default: AGENT_NAME)")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
}
