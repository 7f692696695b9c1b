package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var demoFlags struct {
	participant    string
	conversationID string
	pause          time.Duration
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted conversation that collects and mints one label",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		testQueries := []struct {
			description string
			query       string
		}{
			{"Greeting", "Hi! I'd like to create an NFT label."},
			{"Name", "Let's call it Porsche 911 Carrera."},
			{"Plans are not facts", "I plan to buy a second one next year."},
			{"Description", "The description: An iconic sports car with a twin-turbo flat-six engine, sharp handling, and timeless design."},
			{"Recipient", "Please send it to 0x032e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd"},
			{"Follow-up with thanks", "Thank you!"},
		}

		out := cmd.OutOrStdout()
		for i, test := range testQueries {
			fmt.Fprintf(out, "\nTest %d: %s\n", i+1, test.description)
			fmt.Fprintf(out, "Query: %q\n", test.query)

			response, err := s.runner.Invoke(ctx, s.input(demoFlags.participant, demoFlags.conversationID, test.query))
			if err != nil {
				return fmt.Errorf("invoke graph for test %d: %w", i+1, err)
			}
			fmt.Fprintf(out, "Response %d: %s\n", i+1, response)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(demoFlags.pause):
			}
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoFlags.participant, "participant", "demo-participant", "participant id")
	demoCmd.Flags().StringVar(&demoFlags.conversationID, "conversation", "", "conversation id (default: agent/participant)")
	demoCmd.Flags().DurationVar(&demoFlags.pause, "pause", 500*time.Millisecond, "delay between turns")
}
