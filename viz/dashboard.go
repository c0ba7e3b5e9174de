// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarises a contact list by tag, recent additions and missing details
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/stellar/models"
)

// RecentWindow is how far back a contact counts as recently added.
const RecentWindow = 7 * 24 * time.Hour

type DashboardStats struct {
	TotalContacts int
	ByTag         map[models.Tag]int

	// Added within RecentWindow, newest first
	RecentContacts []RecentContact

	// Needs attention
	MissingNotes []string
	Untagged     []string
}

type RecentContact struct {
	Name    string
	AddedOn time.Time
}

// GenerateDashboardStats summarises contacts as of now.
func GenerateDashboardStats(contacts []models.Contact, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		TotalContacts: len(contacts),
		ByTag:         make(map[models.Tag]int),
	}

	since := now.Add(-RecentWindow)
	for _, contact := range contacts {
		if contact.Tag.Valid() {
			stats.ByTag[contact.Tag]++
		} else {
			stats.Untagged = append(stats.Untagged, contact.Name)
		}

		if strings.TrimSpace(contact.Notes) == "" {
			stats.MissingNotes = append(stats.MissingNotes, contact.Name)
		}

		if contact.CreatedOn != nil && !contact.CreatedOn.Before(since) {
			stats.RecentContacts = append(stats.RecentContacts, RecentContact{
				Name:    contact.Name,
				AddedOn: contact.CreatedOn.Time,
			})
		}
	}

	sort.SliceStable(stats.RecentContacts, func(i, j int) bool {
		return stats.RecentContacts[i].AddedOn.After(stats.RecentContacts[j].AddedOn)
	})

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  STELLAR CONTACTS DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("BY TAG\n")
	renderTags(&out, stats.ByTag)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  🆕 %d added in the last 7 days\n\n",
		stats.TotalContacts, len(stats.RecentContacts)))

	if len(stats.RecentContacts) > 0 {
		out.WriteString("RECENTLY ADDED\n")
		for i, rc := range stats.RecentContacts {
			if i == 5 {
				out.WriteString(fmt.Sprintf("  ... and %d more\n", len(stats.RecentContacts)-5))
				break
			}
			out.WriteString(fmt.Sprintf("  %s  %s\n", rc.AddedOn.Format("2006-01-02"), rc.Name))
		}
		out.WriteString("\n")
	}

	// Needs attention
	if len(stats.MissingNotes) > 0 || len(stats.Untagged) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.Untagged) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no valid tag\n", len(stats.Untagged)))
		}

		if len(stats.MissingNotes) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no notes\n", len(stats.MissingNotes)))
		}
	}

	return out.String()
}

func renderTags(out *strings.Builder, byTag map[models.Tag]int) {
	// Find max count for scaling
	maxCount := 0
	for _, count := range byTag {
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, tag := range models.Tags {
		count := byTag[tag]

		// Calculate bar length (0-10 blocks)
		barLength := (count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-7s %s  %2d\n", tag, bar, count))
	}
}
