package label

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/label-minter/server/internal/agent/model"
)

func TestRenderStatus_MissingRecipientOnly(t *testing.T) {
	out := RenderStatus("Labelbot", model.LabelRecord{Name: "X", Description: "Y"})

	assert.Contains(t, out, "Current Information:\n- Name: X\n- Description: Y\n")
	assert.Contains(t, out, "CURRENT TASK FOR Labelbot:")
	assert.Contains(t, out, "Recipient:\n- Description: Recipient's Starknet address for the label\n")
	assert.Contains(t, out, "- Valid Examples: 0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	assert.Contains(t, out, "- Do Not Extract: email addresses, phone numbers, home addresses, or other types of addresses\n")
	assert.Contains(t, out, "- Instructions: Extract only when user directly states the label's recipient\n")

	assert.NotContains(t, out, "Name:\n- Description")
	assert.NotContains(t, out, "Description:\n- Description")
	assert.NotContains(t, out, "Label's name")
	assert.NotContains(t, out, "Label's description")
	assert.Contains(t, out, "Overall Guidance:")
}

func TestRenderStatus_Empty(t *testing.T) {
	out := RenderStatus("Labelbot", model.LabelRecord{})

	assert.NotContains(t, out, "Current Information:")
	for _, d := range FieldGuidance {
		assert.Contains(t, out, d.Field.Title()+":\n- Description: "+d.Description)
	}
}

func TestRenderStatus_Complete(t *testing.T) {
	out := RenderStatus("Labelbot", completeRecord())

	assert.Contains(t, out, "- Recipient: "+porscheRecipient)
	assert.Contains(t, out, "Status: All necessary information has been collected.")
	assert.NotContains(t, out, "CURRENT TASK")
	assert.NotContains(t, out, "Overall Guidance")
}

func TestFieldGuidanceCoversRequiredFields(t *testing.T) {
	assert.Len(t, FieldGuidance, len(model.RequiredFields))
	for i, f := range model.RequiredFields {
		assert.Equal(t, f, FieldGuidance[i].Field)
	}
}

func TestRenderMintStatus(t *testing.T) {
	assert.Empty(t, RenderMintStatus(nil, ""))

	minted := RenderMintStatus(&model.MintResult{Status: model.MintMinted, TransactionID: "0xabc"}, "https://sepolia.starkscan.co/tx/")
	assert.Contains(t, minted, "The label has been created successfully!")
	assert.Contains(t, minted, "https://sepolia.starkscan.co/tx/0xabc")

	assert.Contains(t, RenderMintStatus(&model.MintResult{Status: model.MintUploaded}, ""), "being minted")

	retry := RenderMintStatus(&model.MintResult{Status: model.MintFailed, Retryable: true, Error: "secret rpc failure"}, "")
	assert.Contains(t, retry, "will be retried")
	assert.NotContains(t, retry, "secret rpc failure")

	final := RenderMintStatus(&model.MintResult{Status: model.MintFailed, Error: "secret rpc failure"}, "")
	assert.Contains(t, final, "will not be retried")
	assert.NotContains(t, final, "secret")
}
