package domain

import "fmt"

// Resource is a countable kind of thing a user can create.
type Resource string

const (
	ResourceLists                Resource = "lists"
	ResourceDestinationsPerList  Resource = "destinations_per_list"
	ResourceJournalEntries       Resource = "journal_entries"
	ResourceImagesPerJournal     Resource = "images_per_journal"
	ResourceCollaboratorsPerList Resource = "collaborators_per_list"
)

// Resources lists every resource kind covered by a LimitSet.
var Resources = []Resource{
	ResourceLists,
	ResourceDestinationsPerList,
	ResourceJournalEntries,
	ResourceImagesPerJournal,
	ResourceCollaboratorsPerList,
}

// Limit is a maximum count. Unlimited (-1) means never denied.
type Limit int64

// Unlimited is the sentinel for "no limit". Compare through Allows, never
// numerically.
const Unlimited Limit = -1

// IsUnlimited reports whether l is the unlimited sentinel.
func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

// Allows reports whether one more item may be added when current already exist.
func (l Limit) Allows(current int64) bool {
	if l.IsUnlimited() {
		return true
	}
	return current < int64(l)
}

// AtLeast reports whether l is no stricter than other, treating Unlimited as
// the highest value.
func (l Limit) AtLeast(other Limit) bool {
	switch {
	case l.IsUnlimited():
		return true
	case other.IsUnlimited():
		return false
	}
	return l >= other
}

// LimitSet is one tier's table of limits.
type LimitSet struct {
	Lists                Limit `json:"lists"`
	DestinationsPerList  Limit `json:"destinations_per_list"`
	JournalEntries       Limit `json:"journal_entries"`
	ImagesPerJournal     Limit `json:"images_per_journal"`
	CollaboratorsPerList Limit `json:"collaborators_per_list"`
}

// For returns the limit for r. Unknown resources return 0, which denies.
func (s LimitSet) For(r Resource) Limit {
	switch r {
	case ResourceLists:
		return s.Lists
	case ResourceDestinationsPerList:
		return s.DestinationsPerList
	case ResourceJournalEntries:
		return s.JournalEntries
	case ResourceImagesPerJournal:
		return s.ImagesPerJournal
	case ResourceCollaboratorsPerList:
		return s.CollaboratorsPerList
	}
	return 0
}

// Validate rejects negative limits other than Unlimited.
func (s LimitSet) Validate() error {
	for _, r := range Resources {
		if l := s.For(r); l < 0 && !l.IsUnlimited() {
			return fmt.Errorf("%w: %s limit must be >= 0 or unlimited, got %d", ErrValidation, r, l)
		}
	}
	return nil
}

// FreeLimits returns the default table for users without an active subscription.
func FreeLimits() LimitSet {
	return LimitSet{
		Lists:                3,
		DestinationsPerList:  10,
		JournalEntries:       20,
		ImagesPerJournal:     1,
		CollaboratorsPerList: 2,
	}
}

// PremiumLimits returns the default table for users with an active subscription.
func PremiumLimits() LimitSet {
	return LimitSet{
		Lists:                Unlimited,
		DestinationsPerList:  Unlimited,
		JournalEntries:       Unlimited,
		ImagesPerJournal:     5,
		CollaboratorsPerList: Unlimited,
	}
}

// LimitDecision is the answer to "may the actor create one more X now".
// A denial is data, not an error.
type LimitDecision struct {
	Resource Resource `json:"resource"`
	Allowed  bool     `json:"allowed"`
	Current  int64    `json:"current"`
	Limit    Limit    `json:"limit"`
}

// NewLimitDecision evaluates current against limit.
func NewLimitDecision(r Resource, current int64, limit Limit) LimitDecision {
	return LimitDecision{
		Resource: r,
		Allowed:  limit.Allows(current),
		Current:  current,
		Limit:    limit,
	}
}

// Err returns nil when the decision allows the action, and a
// *LimitExceededError otherwise.
func (d LimitDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return &LimitExceededError{Resource: d.Resource, Current: d.Current, Limit: d.Limit}
}
