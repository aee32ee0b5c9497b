/*
Package domain contains the core domain models of the thicket selection engine.

It defines the caller-supplied item hierarchy, the per-item tri-state flags, the
ordered selection set, and the session snapshot that adapters persist. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Item: A node of the caller-owned tree (id, label, children, disabled flag).
  - ItemState: The derived checked/indeterminate/expanded flags of one item.
  - SelectionSet: The ordered set of checked ids, maintained incrementally.
  - Session: A snapshot of one mounted selection (states, selection, version).
*/
package domain
