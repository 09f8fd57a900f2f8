// Package excerpt extracts the main content of a document, caches it,
// locates a selected span inside it, and assembles a token-budgeted excerpt
// centred on that span for use as language-model context.
//
// This package contains domain types, interfaces and the pure algorithms
// (token estimation, selection locating, budgeted truncation) following Ben
// Johnson's Standard Package Layout. Implementations live in subdirectories
// named after their primary dependency (e.g., goquery/, readability/, rod/).
package excerpt
