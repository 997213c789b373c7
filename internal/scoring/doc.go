// Package scoring implements the lead scoring engine.
//
// The engine evaluates a room's rule set against a prospect's
// attributes, producing a numeric score, the list of rules that fired,
// and a disqualification flag. Additive rules are commutative, so
// evaluation order never changes the total; the only ordered steps are
// the exclusion tie-break inside a single rule and the gating rule,
// which always runs after every additive rule. Room classification then
// applies the resolved thresholds to the total.
package scoring
