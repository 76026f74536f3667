package gateway

import "strings"

// Emoji is either a unicode emoji (Name only) or a custom guild emoji
// (Name and ID).
type Emoji struct {
	Name     string
	ID       string
	Animated bool
}

// ParseEmoji accepts a unicode glyph ("💬"), a custom emoji in API form
// ("inquiry:123") or in message form ("<:inquiry:123>", "<a:inquiry:123>").
func ParseEmoji(s string) Emoji {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = s[1 : len(s)-1]
	}
	var e Emoji
	if strings.HasPrefix(s, "a:") && strings.Count(s, ":") == 2 {
		e.Animated = true
		s = s[2:]
	}
	if i := strings.LastIndex(s, ":"); i > 0 && i < len(s)-1 {
		e.Name = strings.TrimPrefix(s[:i], ":")
		e.ID = s[i+1:]
		return e
	}
	e.Name = s
	return e
}

// Custom reports whether the emoji is a guild emoji.
func (e Emoji) Custom() bool { return e.ID != "" }

// APIName is the form the reaction endpoints expect.
func (e Emoji) APIName() string {
	if e.Custom() {
		return e.Name + ":" + e.ID
	}
	return e.Name
}

// Matches compares by id for custom emoji and by glyph otherwise.
func (e Emoji) Matches(other Emoji) bool {
	if e.Custom() {
		return e.ID == other.ID
	}
	return !other.Custom() && e.Name == other.Name
}

func (e Emoji) String() string {
	if e.Custom() {
		return ":" + e.Name + ":"
	}
	return e.Name
}
