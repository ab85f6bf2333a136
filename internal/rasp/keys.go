package rasp

import "strings"

// keyAliases maps friendly script tokens to protocol key names. Tokens not in
// the table pass through unchanged so new device keys work without a release.
var keyAliases = map[string]string{
	"ok":            "Select",
	"select":        "Select",
	"home":          "Home",
	"back":          "Back",
	"up":            "Up",
	"down":          "Down",
	"left":          "Left",
	"right":         "Right",
	"enter":         "Enter",
	"play":          "Play",
	"info":          "Info",
	"search":        "Search",
	"backspace":     "Backspace",
	"replay":        "InstantReplay",
	"instantreplay": "InstantReplay",
	"rev":           "Rev",
	"rewind":        "Rev",
	"fwd":           "Fwd",
	"fastforward":   "Fwd",
}

// ResolveKey normalizes a press token through the alias table.
func ResolveKey(token string) string {
	if key, ok := keyAliases[strings.ToLower(strings.TrimSpace(token))]; ok {
		return key
	}
	return token
}

// KnownKey reports whether token is in the alias table.
func KnownKey(token string) bool {
	_, ok := keyAliases[strings.ToLower(strings.TrimSpace(token))]
	return ok
}
