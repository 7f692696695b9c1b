package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMintConfig_Normalized(t *testing.T) {
	c := MintConfig{}.Normalized()
	assert.Equal(t, DefaultUploadTimeout, c.UploadTimeout)
	assert.Equal(t, DefaultConfirmTimeout, c.ConfirmTimeout)
	assert.Equal(t, DefaultClaimLease, c.ClaimLease)
	assert.Equal(t, DefaultMaxAttempts, c.MaxAttempts)
	assert.Equal(t, DefaultResultTTL, c.ResultTTL)
}

func TestMintConfig_LeaseOutlivesRun(t *testing.T) {
	c := MintConfig{UploadTimeout: time.Minute, ConfirmTimeout: 10 * time.Minute, ClaimLease: 5 * time.Minute}

	assert.ErrorContains(t, c.Validate(), "MINT_CLAIM_LEASE")
	assert.Equal(t, 11*time.Minute+claimMargin, c.Normalized().ClaimLease, "a short lease is raised")

	c.ClaimLease = 12 * time.Minute
	assert.NoError(t, c.Validate())
	assert.Equal(t, 12*time.Minute, c.Normalized().ClaimLease)

	assert.NoError(t, MintConfig{}.Validate(), "defaults are consistent")
}
