// Package generation produces personalized email content for prospects.
//
// A Generator turns a rendered prompt into subject and body copy and
// reports token usage. Two implementations ship: a direct Anthropic
// Messages API client and an AWS Bedrock client. When the configured
// generator fails or times out, the service falls back to a
// deterministic render of the template sections so a send is never
// blocked on the model.
//
// Usage is metered per client per UTC day with three ceilings
// (generation count, tokens, cost in USD). The check-and-reserve step
// runs as a single Redis Lua script so concurrent generations cannot
// overshoot a ceiling, and a denied check consumes no budget.
package generation
