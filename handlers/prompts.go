// ABOUTME: MCP prompt handlers for reusable contact workflows
// ABOUTME: Builds contact-summary, tag-overview and recent-digest prompts from live store data
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

type PromptHandlers struct {
	store *store.Store
}

func NewPromptHandlers(st *store.Store) *PromptHandlers {
	return &PromptHandlers{store: st}
}

// Prompts lists the prompt definitions served by GetPrompt.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarise a contact and suggest next steps",
			Arguments: []*mcp.PromptArgument{
				{Name: "contact_id", Description: "Contact ID", Required: true},
			},
		},
		{
			Name:        "tag-overview",
			Description: "Review every contact carrying a tag",
			Arguments: []*mcp.PromptArgument{
				{Name: "tag", Description: "Friend, Family, Work or Other", Required: true},
			},
		},
		{
			Name:        "recent-digest",
			Description: "Digest of recently added contacts",
			Arguments: []*mcp.PromptArgument{
				{Name: "days", Description: "Days to look back (default 5)"},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "tag-overview":
		return h.getTagOverviewPrompt(ctx, arguments)
	case "recent-digest":
		return h.getRecentDigestPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	raw, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	if err := h.store.SelectContact(ctx, id); err != nil {
		return nil, err
	}
	contact := h.store.State().Selected
	if contact == nil {
		return nil, fmt.Errorf("contact %d not found", id)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a short summary of this contact:\n\n")
	writeContact(&promptText, *contact)
	promptText.WriteString("\nPlease suggest:")
	promptText.WriteString("\n1. How this person likely fits in my network given the tag")
	promptText.WriteString("\n2. A reasonable next step for staying in touch")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getTagOverviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	tag, err := models.ParseTag(args["tag"])
	if err != nil {
		return nil, err
	}
	if err := h.store.SearchByTag(ctx, tag); err != nil {
		return nil, err
	}
	contacts := h.store.State().Contacts

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("These are my %d contacts tagged %s:\n\n", len(contacts), tag))
	for _, c := range contacts {
		writeContact(&promptText, c)
		promptText.WriteString("\n")
	}
	promptText.WriteString("Point out duplicates, missing details and anyone who may be mis-tagged.")

	return userPrompt(fmt.Sprintf("Overview of %s contacts", tag), promptText.String()), nil
}

func (h *PromptHandlers) getRecentDigestPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := store.DefaultRecentDays
	if raw := strings.TrimSpace(args["days"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid days: %q", raw)
		}
		days = n
	}
	if err := h.store.Recent(ctx, days); err != nil {
		return nil, err
	}
	contacts := h.store.State().Contacts

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("I added %d contacts in the last %d days:\n\n", len(contacts), days))
	for _, c := range contacts {
		writeContact(&promptText, c)
		promptText.WriteString("\n")
	}
	promptText.WriteString("Write a brief digest grouped by tag and flag anyone I should follow up with.")

	return userPrompt(fmt.Sprintf("Contacts added in the last %d days", days), promptText.String()), nil
}

func writeContact(b *strings.Builder, c models.Contact) {
	b.WriteString(fmt.Sprintf("Name: %s\n", c.Name))
	b.WriteString(fmt.Sprintf("Email: %s\n", c.Email))
	b.WriteString(fmt.Sprintf("Phone: %s\n", c.Phone))
	b.WriteString(fmt.Sprintf("Tag: %s\n", c.Tag))
	if c.Notes != "" {
		b.WriteString(fmt.Sprintf("Notes: %s\n", c.Notes))
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
