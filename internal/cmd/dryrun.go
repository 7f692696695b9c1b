package cmd

import (
	"context"
	"strings"

	"github.com/google/uuid"

	logx "github.com/label-minter/server/pkg/logger"
	"github.com/label-minter/server/pkg/starknet"
)

// dryRunUploader and dryRunMinter stand in for Pinata and Starknet so the
// conversation flow can be tried without credentials.
type dryRunUploader struct{}

func (dryRunUploader) UploadJSON(_ context.Context, name, _ string) (string, error) {
	cid := "dryrun-" + uuid.NewString()
	logx.Info().Str("name", name).Str("cid", cid).Msg("dry run: skipped pinning label metadata")
	return cid, nil
}

type dryRunMinter struct{}

func (dryRunMinter) SubmitMint(_ context.Context, recipient, uri string) (string, error) {
	tx := "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	logx.Info().Str("recipient", recipient).Str("uri", uri).Str("tx_hash", tx).Msg("dry run: skipped mint transaction")
	return tx, nil
}

func (dryRunMinter) WaitForTransaction(context.Context, string) error {
	return nil
}

func (dryRunMinter) ExplorerURL(context.Context) (string, error) {
	return starknet.ExplorerSepolia, nil
}
