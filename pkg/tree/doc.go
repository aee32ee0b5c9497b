/*
Package tree provides read-only queries over caller-supplied item hierarchies.

The free functions (FindItem, FindParentID, CollectDescendantIDs, Walk) work
directly on []domain.Item and are re-run on demand. Index is an arena of ids
built once per tree: it validates that ids are globally unique and answers
parent, children, ancestor, descendant and document-order queries without
walking the tree again.
*/
package tree
