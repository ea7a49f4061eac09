package reports

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/motohubdev/motohub/internal/models"
)

// qtyPattern matches the legacy "(Qty: <n>)" suffix that downstream
// consumers parse part quantities out of.
var qtyPattern = regexp.MustCompile(`^(.*?)\s*\(Qty:\s*(\d+)\)$`)

// UsedPart is one parsed entry of a report's partsUsed string.
type UsedPart struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// FormatPartsUsed renders request parts in the exact wire format other
// consumers parse: "<name> (Qty: <n>)", comma-separated. Changing this
// format breaks those consumers; new code should read PartRefs instead.
func FormatPartsUsed(parts []models.RequestPart) string {
	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		entries = append(entries, fmt.Sprintf("%s (Qty: %d)", p.Name, p.Quantity))
	}
	return strings.Join(entries, ", ")
}

// ParsePartsUsed parses a legacy partsUsed string back into entries.
// Substrings without a quantity suffix are kept with quantity 1, which
// matches how the dashboards treated them.
func ParsePartsUsed(partsUsed string) []UsedPart {
	if strings.TrimSpace(partsUsed) == "" {
		return nil
	}
	var used []UsedPart
	for _, entry := range strings.Split(partsUsed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if m := qtyPattern.FindStringSubmatch(entry); m != nil {
			qty, err := strconv.Atoi(m[2])
			if err != nil || qty < 1 {
				qty = 1
			}
			used = append(used, UsedPart{Name: strings.TrimSpace(m[1]), Quantity: qty})
			continue
		}
		used = append(used, UsedPart{Name: entry, Quantity: 1})
	}
	return used
}

// BuildPartRefs models the report-to-request relationship as data. It is
// the structured replacement for correlating reports with requests by
// string matching on partsUsed.
func BuildPartRefs(req *models.PartRequest) []models.PartRef {
	refs := make([]models.PartRef, 0, len(req.Parts))
	for _, p := range req.Parts {
		refs = append(refs, models.PartRef{
			RequestID: req.ID.Hex(),
			PartID:    p.PartID,
			Quantity:  p.Quantity,
		})
	}
	return refs
}

// MatchRequestParts cross-references a report's partsUsed entries with a
// request's parts by name, the way the legacy dashboards did. Kept for
// reports written before PartRefs existed.
func MatchRequestParts(partsUsed string, req *models.PartRequest) []models.PartRef {
	used := ParsePartsUsed(partsUsed)
	var refs []models.PartRef
	for _, u := range used {
		for _, p := range req.Parts {
			if strings.EqualFold(p.Name, u.Name) {
				refs = append(refs, models.PartRef{
					RequestID: req.ID.Hex(),
					PartID:    p.PartID,
					Quantity:  u.Quantity,
				})
				break
			}
		}
	}
	return refs
}
