package autofill

import (
	"fmt"
	"strings"
)

// promptName identifies the template on the provider side for tracing.
const promptName = "invoiceAutofillPrompt"

// BuildPrompt renders the structured autofill prompt. Existing items are
// embedded as "description (Quantity: q, Unit Price: p)" pairs.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant specialized in suggesting invoice details based on historical data.\n\n")
	b.WriteString("Given the client ID, existing invoice items (if any), currency, and user ID, suggest invoice items and a note that are likely to be applicable.\n\n")
	fmt.Fprintf(&b, "Client ID: %d\n", req.ClientID)
	b.WriteString("Existing Invoice Items: ")
	for i, it := range req.Items {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (Quantity: %g, Unit Price: %g)", it.Description, it.Quantity, it.UnitPrice)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Currency: %s\n", req.Currency)
	fmt.Fprintf(&b, "User ID: %d\n\n", req.UserID)
	b.WriteString("Please provide the suggested invoice items and a note, considering the provided information. Focus on accuracy and relevance.\n")
	b.WriteString("Ensure the suggested items are in the same currency as the invoice.\n")
	fmt.Fprintf(&b, "Do not suggest more than %d items.\n", MaxItems)
	fmt.Fprintf(&b, "Limit the note to %d words.\n\n", MaxNoteWords)
	b.WriteString(`Respond with a single JSON object of the form {"suggestedItems":[{"description":string,"quantity":number,"unitPrice":number}],"suggestedNote":string} and nothing else.`)
	return b.String()
}
