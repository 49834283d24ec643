package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Fingerprint is a pair of deterministic hashes over the canonical form of a
// priced item. Fast is FNV-1a 64 for interactive staleness checks; Audit is
// SHA-256 for audit-log persistence. Both cover the same canonical form.
type Fingerprint struct {
	Fast  string `json:"fast"`
	Audit string `json:"audit"`
}

// ComputeFingerprint canonicalizes the pricing inputs (groups sorted by group
// ID, modifiers within each group sorted by modifier ID) and hashes the
// normal form. The input slices are not mutated.
func ComputeFingerprint(itemID string, basePriceCents int64, groups []SelectedGroup, quantity int) Fingerprint {
	if quantity < 1 {
		quantity = 1
	}
	canonical := canonicalForm(itemID, basePriceCents, groups, quantity)

	fast := fnv.New64a()
	_, _ = fast.Write([]byte(canonical))

	audit := sha256.Sum256([]byte(canonical))

	return Fingerprint{
		Fast:  fmt.Sprintf("%016x", fast.Sum64()),
		Audit: hex.EncodeToString(audit[:]),
	}
}

func canonicalForm(itemID string, basePriceCents int64, groups []SelectedGroup, quantity int) string {
	sorted := make([]SelectedGroup, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GroupID < sorted[j].GroupID })

	var b strings.Builder
	fmt.Fprintf(&b, "item=%s;base=%d;qty=%d", itemID, basePriceCents, quantity)
	for _, g := range sorted {
		mods := make([]SelectedModifier, len(g.Modifiers))
		copy(mods, g.Modifiers)
		sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })

		fmt.Fprintf(&b, ";g=%s:", g.GroupID)
		for i, m := range mods {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s=%d", m.ID, m.PriceAdjustmentCents)
		}
	}
	return b.String()
}
