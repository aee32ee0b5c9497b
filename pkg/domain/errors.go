package domain

import "errors"

// ErrItemNotFound is returned when an id does not resolve to an item of the tree.
var ErrItemNotFound = errors.New("item not found")

// ErrItemDisabled is returned when a toggle targets a disabled item or an item
// inside a disabled subtree.
var ErrItemDisabled = errors.New("item is disabled")

// ErrNotExpandable is returned when expansion is toggled on a non-expandable tree.
var ErrNotExpandable = errors.New("tree is not expandable")

// ErrDuplicateID is returned when two items of a tree share the same id.
var ErrDuplicateID = errors.New("duplicate item id")

// ErrEmptyID is returned when an item has no id.
var ErrEmptyID = errors.New("empty item id")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTreeNotFound is returned when a tree ID cannot be found by the loader.
var ErrTreeNotFound = errors.New("tree not found")

// ErrTreeMismatch is returned when a session is driven with a tree other than
// the one it was started from.
var ErrTreeMismatch = errors.New("session belongs to another tree")
