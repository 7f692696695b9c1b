package label

import (
	"fmt"
	"strings"

	"github.com/label-minter/server/internal/agent/model"
)

// FieldDescriptor is the guidance shown to the agent for one missing field.
type FieldDescriptor struct {
	Field           model.LabelField
	Description     string
	ValidExamples   string
	InvalidExamples string
	Instructions    string
}

// FieldGuidance lists the descriptors of every required field in collection order.
var FieldGuidance = []FieldDescriptor{
	{
		Field:           model.FieldName,
		Description:     "Label's name",
		ValidExamples:   "Porsche 911, iPhone 12, Nike Air Max 90",
		InvalidExamples: "future plans, past possessions, or aspirational items",
		Instructions:    "Extract only when user directly states the label's name",
	},
	{
		Field:           model.FieldDescription,
		Description:     "Label's description",
		ValidExamples:   "A great car, a smartphone, a pair of shoes",
		InvalidExamples: "future plans, past possessions, or aspirational items",
		Instructions:    "Extract only when user directly states the label's description",
	},
	{
		Field:       model.FieldRecipient,
		Description: "Recipient's Starknet address for the label",
		ValidExamples: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e, 0x53d284357ec70cE289D6D64134DfAc8E511c8a3D, " +
			"0x66f820a414680B5bcda5eECA5dea238543F42054",
		InvalidExamples: "email addresses, phone numbers, home addresses, or other types of addresses",
		Instructions:    "Extract only when user directly states the label's recipient",
	},
}

// StatusErrorMessage replaces the status text when the record cannot be read.
const StatusErrorMessage = "Error accessing label information. Continuing conversation normally."

// RenderStatus describes what is known about the label and, for each missing
// field, how agentName should go about collecting it.
func RenderStatus(agentName string, record model.LabelRecord) string {
	var b strings.Builder
	writeKnown(&b, record)

	missing := record.MissingFields()
	if len(missing) == 0 {
		writeCollected(&b)
		return b.String()
	}

	fmt.Fprintf(&b, "CURRENT TASK FOR %s:\n", agentName)
	fmt.Fprintf(&b, "%s should try to prioritize getting this information from the user by asking them questions\n", agentName)
	b.WriteString("Missing Information and Extraction Guidelines:\n\n")

	for _, d := range FieldGuidance {
		if record.Has(d.Field) {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", d.Field.Title())
		fmt.Fprintf(&b, "- Description: %s\n", d.Description)
		fmt.Fprintf(&b, "- Valid Examples: %s\n", d.ValidExamples)
		fmt.Fprintf(&b, "- Do Not Extract: %s\n", d.InvalidExamples)
		fmt.Fprintf(&b, "- Instructions: %s\n\n", d.Instructions)
	}

	b.WriteString("Overall Guidance:\n")
	b.WriteString("- Try to extract all missing information through natural conversation, but be direct in asking for it\n")
	b.WriteString("- Only extract information when clearly and directly stated by the user\n")
	b.WriteString("- Verify information is current, not past or future\n")
	return b.String()
}

// RenderClosedStatus is the label status once collection is over because
// the participant's mint settled or is being confirmed. The label record
// may already have expired.
func RenderClosedStatus(record model.LabelRecord) string {
	var b strings.Builder
	writeKnown(&b, record)
	writeCollected(&b)
	return b.String()
}

func writeKnown(b *strings.Builder, record model.LabelRecord) {
	b.WriteString("Label Information Status:\n\n")

	var known []string
	for _, f := range model.RequiredFields {
		if record.Has(f) {
			known = append(known, fmt.Sprintf("- %s: %s", f.Title(), record.Value(f)))
		}
	}
	if len(known) > 0 {
		b.WriteString("Current Information:\n")
		b.WriteString(strings.Join(known, "\n"))
		b.WriteString("\n\n")
	}
}

func writeCollected(b *strings.Builder) {
	b.WriteString("Status: All necessary information has been collected.\n")
	b.WriteString("Continue natural conversation without information gathering.")
}

// RenderMintStatus tells the agent how the completion action went. It
// never includes raw errors. explorerURL prefixes the transaction hash
// and may be empty.
func RenderMintStatus(result *model.MintResult, explorerURL string) string {
	if result == nil {
		return ""
	}
	switch {
	case result.IsMinted():
		txURL := explorerURL + result.TransactionID
		var b strings.Builder
		b.WriteString("The label has been created successfully!\n")
		fmt.Fprintf(&b, "The transaction hash is %s\n", result.TransactionID)
		fmt.Fprintf(&b, "The transaction URL on the Starknet block explorer is: %s", txURL)
		return b.String()
	case result.InFlight(), result.Status == model.MintSubmitted:
		return "The label is being minted on Starknet right now. Let the user know it can take a minute to confirm."
	case result.Status == model.MintFailed && result.Retryable:
		return "Minting the label did not go through yet and will be retried on the next message. " +
			"Apologise briefly and tell the user their label details are saved."
	case result.Status == model.MintFailed:
		return "Minting the label failed and will not be retried automatically. " +
			"Apologise and tell the user their label could not be created right now."
	default:
		return ""
	}
}
