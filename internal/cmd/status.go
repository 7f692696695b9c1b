package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/label-minter/server/internal/agent/label"
	"github.com/label-minter/server/internal/agent/model"
	"github.com/label-minter/server/pkg/starknet"
)

var statusParticipant string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the stored label and mint status of a participant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(envFile)
		if err != nil {
			return err
		}
		initLogging(cfg)

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		var explorer label.ExplorerSource
		switch {
		case cfg.DryRun:
			explorer = dryRunMinter{}
		case cfg.Starknet.RPCURL != "":
			if e, err := starknet.NewExplorer(cfg.Starknet.RPCURL); err == nil {
				explorer = e
			}
		}

		key := model.RecordKey{AgentID: cfg.AgentName, ParticipantID: statusParticipant}
		if !key.Valid() {
			return fmt.Errorf("--participant is required")
		}
		records := label.NewRecords(st.records, cfg.Label, cfg.Mint)
		provider := label.NewStatusProvider(records, explorer, cfg.AgentName)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, provider.LabelStatus(ctx, key))
		if mint := provider.MintStatus(ctx, key); mint != "" {
			fmt.Fprintf(out, "\nMint Status:\n%s\n", mint)
		}

		rec, err := records.LoadLabel(ctx, key)
		if err != nil {
			return err
		}
		res, err := records.LoadMint(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nCollecting: %t\n", label.ShouldRun(rec, res))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusParticipant, "participant", "", "participant id")
}
