package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	logx "github.com/label-minter/server/pkg/logger"
)

var chatFlags struct {
	participant    string
	conversationID string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent on stdin as one participant",
	Long: `Reads one message per line and prints the agent's reply.
Type /quit or send EOF to stop.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprintf(out, "Chatting with %s as %s. Type /quit to exit.\n> ", s.cfg.AgentName, chatFlags.participant)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "/quit":
				return nil
			case line == "":
				fmt.Fprint(out, "> ")
				continue
			}

			reply, err := s.runner.Invoke(ctx, s.input(chatFlags.participant, chatFlags.conversationID, line))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logx.Error().Err(err).Msg("Failed to answer message")
				fmt.Fprint(out, "(no reply, see logs)\n> ")
				continue
			}
			fmt.Fprintf(out, "%s: %s\n> ", s.cfg.AgentName, reply)
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.participant, "participant", "cli-participant", "participant id")
	chatCmd.Flags().StringVar(&chatFlags.conversationID, "conversation", "", "conversation id (default: agent/participant)")
}
