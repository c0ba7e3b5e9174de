// ABOUTME: Contact MCP tool handlers
// ABOUTME: Exposes listing, lookup, mutation, search, sort, recent, export and stats over the shared store
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

type ContactHandlers struct {
	store *store.Store
}

func NewContactHandlers(st *store.Store) *ContactHandlers {
	return &ContactHandlers{store: st}
}

type ContactOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Tag       string `json:"tag"`
	Notes     string `json:"notes,omitempty"`
	CreatedOn string `json:"created_on,omitempty"`
}

type ContactListOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Label    string          `json:"label"`
	Total    int             `json:"total"`
}

type ListContactsInput struct {
	Page int `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Size int `json:"size,omitempty" jsonschema:"Contacts per page (default keeps the current size)"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, request *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ContactListOutput, error) {
	page := input.Page
	if page == 0 {
		page = 1
	}
	if page < 0 || input.Size < 0 {
		return nil, ContactListOutput{}, fmt.Errorf("page and size must be positive")
	}

	p := h.store.State().Pagination
	if input.Size > 0 {
		p = p.WithSize(input.Size)
	}
	if err := h.store.SetPagination(ctx, p.WithPage(page-1)); err != nil {
		return nil, ContactListOutput{}, err
	}
	return nil, listOutput(h.store.State()), nil
}

type GetContactInput struct {
	ID int64 `json:"id" jsonschema:"Contact ID (required)"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, request *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID <= 0 {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	if err := h.store.SelectContact(ctx, input.ID); err != nil {
		return nil, ContactOutput{}, err
	}
	selected := h.store.State().Selected
	if selected == nil {
		return nil, ContactOutput{}, fmt.Errorf("contact %d not found", input.ID)
	}
	return nil, contactToOutput(*selected), nil
}

type AddContactInput struct {
	Name  string `json:"name" jsonschema:"Contact name (required)"`
	Email string `json:"email" jsonschema:"Contact email address (required)"`
	Phone string `json:"phone" jsonschema:"Contact phone number (required)"`
	Tag   string `json:"tag,omitempty" jsonschema:"One of Friend, Family, Work or Other (default Other)"`
	Notes string `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	tag := models.DefaultTag
	if strings.TrimSpace(input.Tag) != "" {
		parsed, err := models.ParseTag(input.Tag)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		tag = parsed
	}

	created, err := h.store.CreateContact(ctx, models.Contact{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
		Tag:   tag,
		Notes: input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, contactToOutput(created), nil
}

type UpdateContactInput struct {
	ID    int64   `json:"id" jsonschema:"Contact ID (required)"`
	Name  *string `json:"name,omitempty" jsonschema:"New name"`
	Email *string `json:"email,omitempty" jsonschema:"New email address"`
	Phone *string `json:"phone,omitempty" jsonschema:"New phone number"`
	Tag   *string `json:"tag,omitempty" jsonschema:"New tag: Friend, Family, Work or Other"`
	Notes *string `json:"notes,omitempty" jsonschema:"New notes"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	_, existing, err := h.GetContact(ctx, request, GetContactInput{ID: input.ID})
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact := models.Contact{
		ID:    existing.ID,
		Name:  existing.Name,
		Email: existing.Email,
		Phone: existing.Phone,
		Tag:   models.Tag(existing.Tag),
		Notes: existing.Notes,
	}
	if input.Name != nil {
		contact.Name = *input.Name
	}
	if input.Email != nil {
		contact.Email = *input.Email
	}
	if input.Phone != nil {
		contact.Phone = *input.Phone
	}
	if input.Notes != nil {
		contact.Notes = *input.Notes
	}
	if input.Tag != nil {
		tag, err := models.ParseTag(*input.Tag)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		contact.Tag = tag
	}

	updated, err := h.store.UpdateContact(ctx, input.ID, contact)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, contactToOutput(updated), nil
}

type DeleteContactInput struct {
	ID int64 `json:"id" jsonschema:"Contact ID (required)"`
}

type DeleteContactOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, request *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	if input.ID <= 0 {
		return nil, DeleteContactOutput{}, fmt.Errorf("id is required")
	}
	if err := h.store.DeleteContact(ctx, input.ID); err != nil {
		return nil, DeleteContactOutput{}, err
	}
	return nil, DeleteContactOutput{ID: input.ID, Deleted: true}, nil
}

type SearchContactsInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Name contains"`
	Phone string `json:"phone,omitempty" jsonschema:"Phone contains"`
	Tag   string `json:"tag,omitempty" jsonschema:"Exact tag: Friend, Family, Work or Other"`
	Notes string `json:"notes,omitempty" jsonschema:"Notes contain"`
}

func (h *ContactHandlers) SearchContacts(ctx context.Context, request *mcp.CallToolRequest, input SearchContactsInput) (*mcp.CallToolResult, ContactListOutput, error) {
	criteria := models.SearchCriteria{
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
		Notes: strings.TrimSpace(input.Notes),
	}
	if strings.TrimSpace(input.Tag) != "" {
		tag, err := models.ParseTag(input.Tag)
		if err != nil {
			return nil, ContactListOutput{}, err
		}
		criteria.Tag = tag
	}
	if criteria.IsEmpty() {
		return nil, ContactListOutput{}, fmt.Errorf("at least one of name, phone, tag or notes is required")
	}

	if err := h.store.Search(ctx, criteria); err != nil {
		return nil, ContactListOutput{}, err
	}
	return nil, listOutput(h.store.State()), nil
}

type SortContactsInput struct {
	SortBy    string `json:"sort_by,omitempty" jsonschema:"Field to sort on: id or name (default name)"`
	Direction string `json:"direction,omitempty" jsonschema:"asc or desc (default asc)"`
}

func (h *ContactHandlers) SortContacts(ctx context.Context, request *mcp.CallToolRequest, input SortContactsInput) (*mcp.CallToolResult, ContactListOutput, error) {
	order := models.Sort{Field: models.SortByName, Direction: models.Ascending}
	if input.SortBy != "" {
		field, err := models.ParseSortField(input.SortBy)
		if err != nil {
			return nil, ContactListOutput{}, err
		}
		order.Field = field
	}
	if input.Direction != "" {
		dir, err := models.ParseDirection(input.Direction)
		if err != nil {
			return nil, ContactListOutput{}, err
		}
		order.Direction = dir
	}

	if err := h.store.Sort(ctx, order); err != nil {
		return nil, ContactListOutput{}, err
	}
	return nil, listOutput(h.store.State()), nil
}

type DaysInput struct {
	Days int `json:"days,omitempty" jsonschema:"Number of days to look back"`
}

func (h *ContactHandlers) RecentContacts(ctx context.Context, request *mcp.CallToolRequest, input DaysInput) (*mcp.CallToolResult, ContactListOutput, error) {
	if input.Days < 0 {
		return nil, ContactListOutput{}, fmt.Errorf("days must not be negative")
	}
	if err := h.store.Recent(ctx, input.Days); err != nil {
		return nil, ContactListOutput{}, err
	}
	return nil, listOutput(h.store.State()), nil
}

type ExportOutput struct {
	Filename string `json:"filename"`
	Days     int    `json:"days"`
	CSV      string `json:"csv"`
}

func (h *ContactHandlers) ExportContacts(ctx context.Context, request *mcp.CallToolRequest, input DaysInput) (*mcp.CallToolResult, ExportOutput, error) {
	if input.Days < 0 {
		return nil, ExportOutput{}, fmt.Errorf("days must not be negative")
	}
	exp, err := h.store.ExportContacts(ctx, input.Days)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	return nil, ExportOutput{Filename: exp.Filename, Days: exp.Days, CSV: string(exp.Data)}, nil
}

type StatsInput struct{}

type StatsOutput struct {
	TotalContacts int `json:"total_contacts"`
	PageSize      int `json:"page_size"`
	TotalPages    int `json:"total_pages"`
}

func (h *ContactHandlers) ContactStats(ctx context.Context, request *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	if err := h.store.Refresh(ctx); err != nil {
		return nil, StatsOutput{}, err
	}
	s := h.store.State()
	return nil, StatsOutput{
		TotalContacts: s.TotalContacts,
		PageSize:      s.Pagination.Size,
		TotalPages:    s.TotalPages,
	}, nil
}

func listOutput(s store.State) ContactListOutput {
	out := ContactListOutput{
		Contacts: make([]ContactOutput, len(s.Contacts)),
		Label:    s.ListLabel(),
		Total:    s.TotalContacts,
	}
	for i, c := range s.Contacts {
		out.Contacts[i] = contactToOutput(c)
	}
	return out
}

func contactToOutput(c models.Contact) ContactOutput {
	out := ContactOutput{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Tag:   string(c.Tag),
		Notes: c.Notes,
	}
	if c.CreatedOn != nil && !c.CreatedOn.IsZero() {
		out.CreatedOn = c.CreatedOn.Format(time.RFC3339)
	}
	return out
}
