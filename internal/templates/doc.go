// Package templates implements content template resolution for
// campaigns.
//
// Each template occupies an order slot (0 through 4) within a room.
// Campaign templates claim their slots unconditionally; global
// templates only fill unclaimed slots. A campaign occupying every slot
// shadows all globals for that room. The merged view is deterministic
// regardless of database retrieval order and never exceeds five
// templates.
//
// Prompt sections are rendered with Liquid before being handed to the
// generation collaborator.
package templates
