// ABOUTME: Contact resource operations on the REST client
// ABOUTME: One method per server route: paging, CRUD, search, sort, stats, recent and export
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harperreed/stellar/models"
)

type pageResponse struct {
	Contacts   []models.Contact `json:"contacts"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
}

// ListPage fetches one page of contacts. When the server reports only a total
// count, the page count is derived from it.
func (c *Client) ListPage(ctx context.Context, p models.Pagination) (models.ContactsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))

	var resp pageResponse
	if err := c.getJSON(ctx, OpFetchContacts, c.endpoint(q, "contacts", "page"), &resp); err != nil {
		return models.ContactsPage{}, err
	}

	page := models.ContactsPage{
		Contacts:   resp.Contacts,
		TotalPages: resp.TotalPages,
		Total:      resp.Total,
	}
	if page.Contacts == nil {
		page.Contacts = []models.Contact{}
	}
	if page.TotalPages == 0 && page.Total > 0 {
		page.TotalPages = models.TotalPages(page.Total, p.Size)
	}
	return page, nil
}

// List fetches every contact without pagination.
func (c *Client) List(ctx context.Context) ([]models.Contact, error) {
	return c.getContacts(ctx, OpFetchContacts, c.endpoint(nil, "contacts"))
}

// Get fetches a single contact. A missing contact yields an error wrapping ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (models.Contact, error) {
	var contact models.Contact
	if err := c.getJSON(ctx, OpFetchContact, c.endpoint(nil, "contacts", formatID(id)), &contact); err != nil {
		return models.Contact{}, err
	}
	return contact, nil
}

// Create posts a new contact and returns the stored record. Servers that reply
// with only a status message yield the submitted contact without an id.
func (c *Client) Create(ctx context.Context, contact models.Contact) (models.Contact, error) {
	contact.ID = 0
	contact.CreatedOn = nil
	data, err := c.readBody(ctx, OpCreateContact, http.MethodPost, c.endpoint(nil, "contacts"), mimeJSON, contact)
	if err != nil {
		return models.Contact{}, err
	}
	return decodeEcho(data, contact), nil
}

// Update replaces the contact with the given id.
func (c *Client) Update(ctx context.Context, id int64, contact models.Contact) (models.Contact, error) {
	contact.ID = id
	data, err := c.readBody(ctx, OpUpdateContact, http.MethodPut, c.endpoint(nil, "contacts", formatID(id)), mimeJSON, contact)
	if err != nil {
		return models.Contact{}, err
	}
	return decodeEcho(data, contact), nil
}

// Delete removes the contact with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.readBody(ctx, OpDeleteContact, http.MethodDelete, c.endpoint(nil, "contacts", formatID(id)), mimeJSON, nil)
	return err
}

// SearchByName finds contacts whose name contains name.
func (c *Client) SearchByName(ctx context.Context, name string) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("name", name)
	return c.getContacts(ctx, OpSearch, c.endpoint(q, "contacts", "search"))
}

// SearchByPhone finds contacts whose phone contains phone.
func (c *Client) SearchByPhone(ctx context.Context, phone string) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("phone", phone)
	return c.getContacts(ctx, OpSearch, c.endpoint(q, "contacts", "search", "phone"))
}

// SearchByTag finds contacts carrying tag.
func (c *Client) SearchByTag(ctx context.Context, tag models.Tag) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("tag", string(tag))
	return c.getContacts(ctx, OpSearch, c.endpoint(q, "contacts", "search", "tag"))
}

// AdvancedSearch combines the name, tag and notes filters; empty filters are omitted.
func (c *Client) AdvancedSearch(ctx context.Context, criteria models.SearchCriteria) ([]models.Contact, error) {
	q := url.Values{}
	if criteria.Name != "" {
		q.Set("name", criteria.Name)
	}
	if criteria.Tag != "" {
		q.Set("tag", string(criteria.Tag))
	}
	if criteria.Notes != "" {
		q.Set("notes", criteria.Notes)
	}
	return c.getContacts(ctx, OpSearch, c.endpoint(q, "contacts", "search", "advanced"))
}

// Sort fetches every contact in the requested order.
func (c *Client) Sort(ctx context.Context, s models.Sort) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("sortBy", string(s.Field))
	q.Set("direction", string(s.Direction))
	return c.getContacts(ctx, OpSort, c.endpoint(q, "contacts", "sort"))
}

// TotalCount returns the number of stored contacts. Both a bare number and
// an object of the form {"total": n} are accepted.
func (c *Client) TotalCount(ctx context.Context) (int, error) {
	data, err := c.readBody(ctx, OpTotalCount, http.MethodGet, c.endpoint(nil, "contacts", "stats", "total"), mimeJSON, nil)
	if err != nil {
		return 0, err
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	var wrapped struct {
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Total == nil {
		return 0, failed(OpTotalCount, http.StatusOK, fmt.Errorf("unexpected total payload %q", truncate(data)))
	}
	return *wrapped.Total, nil
}

// Recent fetches contacts created within the last days days.
func (c *Client) Recent(ctx context.Context, days int) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	return c.getContacts(ctx, OpRecent, c.endpoint(q, "contacts", "recent"))
}

// Export downloads the CSV export for the last days days as raw bytes.
func (c *Client) Export(ctx context.Context, days int) ([]byte, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	return c.readBody(ctx, OpExport, http.MethodGet, c.endpoint(q, "contacts", "export"), mimeCSV, nil)
}

func (c *Client) getContacts(ctx context.Context, op, target string) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := c.getJSON(ctx, op, target, &contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}

// decodeEcho returns the contact echoed by the server, or fallback when the
// body is empty or not a contact.
func decodeEcho(data []byte, fallback models.Contact) models.Contact {
	if len(data) == 0 {
		return fallback
	}
	var echoed models.Contact
	if err := json.Unmarshal(data, &echoed); err != nil || !echoed.HasID() {
		return fallback
	}
	return echoed
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func truncate(data []byte) string {
	const max = 64
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
