package inquiry

import (
	"strings"

	"github.com/samber/lo"

	"github.com/onnwee/inquiry-desk/gateway"
)

// maxChannelName is the platform limit on channel name length.
const maxChannelName = 100

// ChannelName builds the inquiry channel name for a user: the prefix, a
// hyphen, and the lower-cased username with every run of characters outside
// [a-z0-9] collapsed to a single hyphen. "Al Ice!" becomes "inquiry-al-ice".
// A username with nothing usable falls back to the user id.
func ChannelName(prefix string, user gateway.User) string {
	slug := slugify(user.Username)
	if slug == "" {
		slug = slugify(user.ID)
	}
	name := slugify(prefix)
	if slug != "" {
		if name != "" {
			name += "-"
		}
		name += slug
	}
	if len(name) > maxChannelName {
		name = strings.TrimRight(name[:maxChannelName], "-")
	}
	return name
}

func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// AdminRole picks the role that receives staff access to inquiry channels.
// Candidates hold the Administrator permission and are neither @everyone
// (whose id equals the guild id) nor managed by an integration. The lowest
// position wins; equal positions fall back to the oldest (smallest) id, so
// the choice never depends on the order the platform returns roles in.
func AdminRole(guildID string, roles []gateway.Role) (gateway.Role, bool) {
	candidates := lo.Filter(roles, func(r gateway.Role, _ int) bool {
		return r.ID != guildID && !r.Managed && r.Permissions.Has(gateway.PermissionAdministrator)
	})
	if len(candidates) == 0 {
		return gateway.Role{}, false
	}
	return lo.MinBy(candidates, func(a, b gateway.Role) bool {
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return snowflakeLess(a.ID, b.ID)
	}), true
}

// snowflakeLess orders numeric ids without parsing them.
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
