package provider

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// playerAliases maps odds-feed names to the stats feed's official names.
// The odds feed drops suffixes, strips accents, and prefers nicknames; new
// mismatches surface in analysis logs as "player not found" and get added
// here.
var playerAliases = map[string]string{
	// Suffix variations
	"Jimmy Butler":    "Jimmy Butler III",
	"Gary Trent":      "Gary Trent Jr.",
	"Michael Porter":  "Michael Porter Jr.",
	"Kelly Oubre":     "Kelly Oubre Jr.",
	"Jaren Jackson":   "Jaren Jackson Jr.",
	"Tim Hardaway":    "Tim Hardaway Jr.",
	"Wendell Carter":  "Wendell Carter Jr.",
	"Marcus Morris":   "Marcus Morris Sr.",
	"Troy Brown":      "Troy Brown Jr.",
	"Gary Payton":     "Gary Payton II",
	"Scottie Pippen":  "Scottie Pippen Jr.",
	"Trey Murphy":     "Trey Murphy III",

	// Nickname vs legal name variations
	"Nic Claxton":   "Nicolas Claxton",
	"Herb Jones":    "Herbert Jones",
	"PJ Washington": "P.J. Washington",
	"OG Anunoby":    "O.G. Anunoby",
	"RJ Barrett":    "R.J. Barrett",
	"TJ McConnell":  "T.J. McConnell",
	"CJ McCollum":   "C.J. McCollum",
	"Moe Wagner":    "Moritz Wagner",
	"Lu Dort":       "Luguentz Dort",
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizePlayerName maps an odds-feed player name onto the stats feed's
// official spelling: explicit aliases first, otherwise the name passes
// through unchanged.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	if official, ok := playerAliases[name]; ok {
		return official
	}

	// Case-insensitive alias lookup
	lower := strings.ToLower(name)
	for alias, official := range playerAliases {
		if strings.ToLower(alias) == lower {
			return official
		}
	}

	return name
}

// FoldName strips accent marks and lowercases, producing a stable key for
// matching "Nikola Jokic" against "Nikola Jokić" without an alias entry.
func FoldName(name string) string {
	folded, _, err := transform.String(accentStripper, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// NamesMatch reports whether two free-text player names refer to the same
// player after alias mapping and accent folding.
func NamesMatch(a, b string) bool {
	return FoldName(NormalizePlayerName(a)) == FoldName(NormalizePlayerName(b))
}
