package domain

// ConnectionID identifies a single live transport session.
// A user may hold several connections at once.
type ConnectionID string
