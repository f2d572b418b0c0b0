package domain

import "github.com/google/uuid"

// PermissionLevel is the access a user has on a list.
// The zero value, LevelNone, means no access at all.
type PermissionLevel string

const (
	LevelNone       PermissionLevel = ""
	LevelView       PermissionLevel = "view"
	LevelSuggest    PermissionLevel = "suggest"
	LevelContribute PermissionLevel = "contribute"
	LevelCoOwner    PermissionLevel = "co-owner"
)

// rank orders levels so they can be compared. Unknown levels rank as none.
func (l PermissionLevel) rank() int {
	switch l {
	case LevelView:
		return 1
	case LevelSuggest:
		return 2
	case LevelContribute:
		return 3
	case LevelCoOwner:
		return 4
	}
	return 0
}

// Valid reports whether l is a grantable level. LevelNone is not grantable.
func (l PermissionLevel) Valid() bool {
	return l.rank() > 0
}

// AtLeast reports whether l grants at least the rights of other.
func (l PermissionLevel) AtLeast(other PermissionLevel) bool {
	return l.rank() >= other.rank()
}

// CanView reports whether l grants read access.
func (l PermissionLevel) CanView() bool {
	return l.Valid()
}

// CanMutate reports whether l allows updating the list and its destinations.
func (l PermissionLevel) CanMutate() bool {
	return l == LevelContribute || l == LevelCoOwner
}

// ResolvePermission decides the level userID has on list.
// isFriend reports whether userID is a friend of the list owner; it is only
// consulted for friends-visibility lists, so callers may pass a lazy check.
//
// Order: owner, explicit grant, public tier, friends tier, none.
// A uuid.Nil userID is an anonymous visitor and can only get the public tier.
func ResolvePermission(list TravelList, userID uuid.UUID, isFriend func() bool) PermissionLevel {
	if userID != uuid.Nil && userID == list.OwnerID {
		return LevelCoOwner
	}
	if userID != uuid.Nil {
		if p, ok := list.PermissionFor(userID); ok {
			return p.Level
		}
	}
	switch list.Visibility {
	case VisibilityPublic:
		return LevelView
	case VisibilityFriends:
		// Friendship alone is view-only; contributing needs an explicit grant.
		if userID != uuid.Nil && isFriend != nil && isFriend() {
			return LevelView
		}
	}
	return LevelNone
}

// CanDelete reports whether userID may delete list. Deletion is owner-only:
// a co-owner grant does not carry it.
func CanDelete(list TravelList, userID uuid.UUID) bool {
	return userID != uuid.Nil && userID == list.OwnerID
}
