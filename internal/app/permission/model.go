// Package permission tracks who may control a room, delegate control and vote.
package permission

import (
	"sort"

	"github.com/osa030/19room/internal/domain/room"
)

// Rejection codes.
const (
	CodeNotCreator          = "not_creator"
	CodeNoPermission        = "no_permission"
	CodeTargetNotMember     = "target_not_member"
	CodeCannotRevokeCreator = "cannot_revoke_creator"
	CodeAlreadyInvited      = "already_invited"
	CodeInviteSelf          = "invite_self"
)

// Membership answers membership questions for the model.
type Membership interface {
	IsMember(userID string) bool
}

// Model holds the permission state of one room.
// It is owned by the room actor and is not safe for concurrent use.
type Model struct {
	creatorID       string
	visibility      room.Visibility
	permitted       map[string]bool
	invited         map[string]bool
	delegationOwner string
	members         Membership
}

// NewModel creates the model. The creator holds the permission flag.
func NewModel(creatorID string, settings room.Settings, members Membership) *Model {
	return &Model{
		creatorID:  creatorID,
		visibility: settings.Visibility,
		permitted:  map[string]bool{creatorID: true},
		invited:    make(map[string]bool),
		members:    members,
	}
}

// CreatorID returns the immutable creator.
func (m *Model) CreatorID() string {
	return m.creatorID
}

// IsCreator reports whether userID created the room.
func (m *Model) IsCreator(userID string) bool {
	return userID == m.creatorID
}

// HasPermission reports whether userID holds the control and delegation flag.
func (m *Model) HasPermission(userID string) bool {
	return m.permitted[userID]
}

// HasControl reports whether userID may play, pause, skip or remove tracks.
func (m *Model) HasControl(userID string) bool {
	return m.permitted[userID] || (m.delegationOwner != "" && m.delegationOwner == userID)
}

// UpdatePermission grants or revokes the flag. Only the creator may call it.
func (m *Model) UpdatePermission(callerID, targetID string, granted bool) string {
	if callerID != m.creatorID {
		return CodeNotCreator
	}
	if targetID == m.creatorID && !granted {
		return CodeCannotRevokeCreator
	}
	if !m.members.IsMember(targetID) {
		return CodeTargetNotMember
	}
	if granted {
		m.permitted[targetID] = true
	} else {
		delete(m.permitted, targetID)
	}
	return ""
}

// Invite adds invitee to the invited set. The inviter must be the creator
// or hold the permission flag.
func (m *Model) Invite(inviterID, inviteeID string) string {
	if inviterID != m.creatorID && !m.permitted[inviterID] {
		return CodeNoPermission
	}
	if inviteeID == inviterID {
		return CodeInviteSelf
	}
	if m.invited[inviteeID] {
		return CodeAlreadyInvited
	}
	m.invited[inviteeID] = true
	return ""
}

// IsInvited reports whether userID was invited.
func (m *Model) IsInvited(userID string) bool {
	return m.invited[userID]
}

// DelegationOwner returns the current delegation owner, or "".
func (m *Model) DelegationOwner() string {
	return m.delegationOwner
}

// SetDelegationOwner transfers delegation. The caller must hold the flag or
// be the current delegation owner; the target must be a member.
func (m *Model) SetDelegationOwner(callerID, targetID string) string {
	if !m.permitted[callerID] && callerID != m.delegationOwner {
		return CodeNoPermission
	}
	if !m.members.IsMember(targetID) {
		return CodeTargetNotMember
	}
	m.delegationOwner = targetID
	return ""
}

// ClearDelegationIf drops the delegation owner if it is userID.
// Returns true when delegation was cleared.
func (m *Model) ClearDelegationIf(userID string) bool {
	if m.delegationOwner == "" || m.delegationOwner != userID {
		return false
	}
	m.delegationOwner = ""
	return true
}

// ForceDelegationOwner sets the owner without caller checks. Used by re-election.
func (m *Model) ForceDelegationOwner(userID string) {
	m.delegationOwner = userID
}

// Forget drops the permission flag of a departing member. The creator's flag survives.
func (m *Model) Forget(userID string) {
	if userID != m.creatorID {
		delete(m.permitted, userID)
	}
	m.ClearDelegationIf(userID)
}

// PermittedUsers returns the users holding the flag, sorted.
func (m *Model) PermittedUsers() []string {
	out := make([]string, 0, len(m.permitted))
	for id := range m.permitted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CanJoin reports whether userID may join. Reconnecting members always may.
func (m *Model) CanJoin(userID string, reconnecting bool) bool {
	return reconnecting || m.visibility == room.VisibilityPublic || m.invited[userID] || userID == m.creatorID
}
