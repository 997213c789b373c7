// Package tracking maintains the engagement lifecycle of generated
// emails. The status on a record is a monotonic milestone (pending,
// copied, opened, clicked) that never moves backward; event timestamps
// are stamped independently so a late open after a click still gets
// its OpenedAt.
//
// Open and click callbacks arrive on public URLs, so every link embeds
// an HMAC-SHA256 signature over the tracking token. A request with a
// bad signature is dropped without touching storage.
package tracking
