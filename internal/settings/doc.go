// Package settings implements effective-configuration resolution for
// clients.
//
// Global defaults live in a GlobalConfigStore; a client may override
// the thresholds axis whole-object and individual scoring rules
// per-field. The resolver merges the two at read time, so a field the
// client never touched always reflects the current global value, and
// deleting an override reverts the client to global with no residue.
//
// The service layer depends on store interfaces defined in this
// package. Implementations: postgres.go (durable), memory.go (tests),
// and debounce.go (redis cache + delayed durable flush).
package settings
