package gateway

// Permission is a bit set using the platform's permission bit values.
type Permission int64

const (
	PermissionManageChannels     Permission = 1 << 4
	PermissionAdministrator      Permission = 1 << 3
	PermissionViewChannel        Permission = 1 << 10
	PermissionSendMessages       Permission = 1 << 11
	PermissionManageMessages     Permission = 1 << 13
	PermissionEmbedLinks         Permission = 1 << 14
	PermissionAttachFiles        Permission = 1 << 15
	PermissionReadMessageHistory Permission = 1 << 16
)

// Has reports whether every bit of q is set in p.
func (p Permission) Has(q Permission) bool { return p&q == q }

// OverwriteKind says whether an overwrite targets a role or a member.
type OverwriteKind int

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

func (k OverwriteKind) String() string {
	if k == OverwriteMember {
		return "member"
	}
	return "role"
}

// PermissionOverwrite grants or denies permissions to one principal on one
// channel.
type PermissionOverwrite struct {
	TargetID string
	Kind     OverwriteKind
	Allow    Permission
	Deny     Permission
}
