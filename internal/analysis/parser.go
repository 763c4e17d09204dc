package analysis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// ActionItemsMarker opens the action item section, matched case-insensitively
	ActionItemsMarker = "ACTION ITEMS FOR EDUARDO MANGARELLI"

	// ParticipantsHeader closes the action item section, matched as a case-sensitive prefix
	ParticipantsHeader = "PARTICIPANTS"

	noActionItems = "no specific action items"
)

// ExtractActionItems returns the dash-prefixed lines found between the action
// item header and the participants header, in reply order.
//
// Only lines beginning with "-" count. Numbered lists, renamed headers and
// wrapped items are not recognised and produce a shorter (possibly empty) list.
func ExtractActionItems(reply string) []string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	items := []string{}
	capturing := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(upper.String(line), ActionItemsMarker) {
			capturing = true
			continue
		}

		if !capturing {
			continue
		}

		if strings.HasPrefix(line, ParticipantsHeader) {
			break
		}

		if !strings.HasPrefix(line, "-") {
			continue
		}

		item := strings.TrimSpace(line[1:])
		if item == "" || strings.Contains(lower.String(item), noActionItems) {
			continue
		}
		items = append(items, item)
	}

	return items
}
