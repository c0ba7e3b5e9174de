// ABOUTME: MCP resource handlers for exposing contact data
// ABOUTME: Serves the current list, single contacts and stats as JSON under stellar:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/stellar/store"
)

// ResourceScheme prefixes every resource URI.
const ResourceScheme = "stellar://"

type ResourceHandlers struct {
	store *store.Store
}

func NewResourceHandlers(st *store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: st}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, ResourceScheme), "/")
	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readContacts(ctx, uri)
		}
		return h.readContact(ctx, uri, parts[1])
	case "stats":
		return h.readStats(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

// readContacts returns whatever list the store currently shows, loading the
// first page if nothing has been fetched yet.
func (h *ResourceHandlers) readContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	s := h.store.State()
	if !s.Initialized() {
		if err := h.store.Refresh(ctx); err != nil {
			return nil, err
		}
		s = h.store.State()
	}
	return jsonResource(uri, listOutput(s))
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, rawID string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}
	if err := h.store.SelectContact(ctx, id); err != nil {
		return nil, err
	}
	selected := h.store.State().Selected
	if selected == nil {
		return nil, fmt.Errorf("contact %d not found", id)
	}
	return jsonResource(uri, contactToOutput(*selected))
}

func (h *ResourceHandlers) readStats(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if err := h.store.Refresh(ctx); err != nil {
		return nil, err
	}
	s := h.store.State()
	return jsonResource(uri, StatsOutput{
		TotalContacts: s.TotalContacts,
		PageSize:      s.Pagination.Size,
		TotalPages:    s.TotalPages,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
