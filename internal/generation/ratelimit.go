package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/leadroom/internal/domain"
)

// Limits are the per-client daily ceilings. A zero field means that
// ceiling is not enforced.
type Limits struct {
	DailyGenerations int
	DailyTokens      int
	DailyCostUSD     float64
}

// Lua script for the atomic check-and-reserve. All three ceilings are
// checked before anything is incremented, so a denial leaves the
// counters untouched. On success the generation count and the token
// estimate are reserved in one step.
const checkReserveLuaScript = `
local countKey = KEYS[1]
local tokenKey = KEYS[2]
local costKey  = KEYS[3]
local estTokens  = tonumber(ARGV[1])
local countLimit = tonumber(ARGV[2])
local tokenLimit = tonumber(ARGV[3])
local costLimit  = tonumber(ARGV[4])
local ttl        = tonumber(ARGV[5])

local count = tonumber(redis.call("GET", countKey) or "0")
local toks  = tonumber(redis.call("GET", tokenKey) or "0")
local cost  = tonumber(redis.call("GET", costKey) or "0")

if countLimit > 0 and count + 1 > countLimit then
    return {0, 1, count}
end
if tokenLimit > 0 and toks + estTokens > tokenLimit then
    return {0, 2, toks}
end
if costLimit > 0 and cost >= costLimit then
    return {0, 3, cost}
end

local newCount = redis.call("INCR", countKey)
if newCount == 1 then
    redis.call("EXPIRE", countKey, ttl)
end

local newToks = redis.call("INCRBY", tokenKey, estTokens)
if newToks == estTokens then
    redis.call("EXPIRE", tokenKey, ttl)
end

return {1, 0, newCount}
`

// Lua script to settle the reservation against actual usage: the token
// counter moves by (actual - estimate) and the cost counter accrues.
const recordUsageLuaScript = `
local tokenKey = KEYS[1]
local costKey  = KEYS[2]
local tokenDelta = tonumber(ARGV[1])
local cost       = tonumber(ARGV[2])
local ttl        = tonumber(ARGV[3])

if tokenDelta ~= 0 then
    local newToks = redis.call("INCRBY", tokenKey, tokenDelta)
    if newToks < 0 then
        redis.call("SET", tokenKey, 0)
    end
    if newToks == tokenDelta then
        redis.call("EXPIRE", tokenKey, ttl)
    end
end

local newCost = redis.call("INCRBYFLOAT", costKey, cost)
redis.call("EXPIRE", costKey, ttl)

return newCost
`

// Lua script to undo a reservation that never turned into a
// generation: the slot and the token estimate both come back, floored
// at zero.
const releaseLuaScript = `
local countKey = KEYS[1]
local tokenKey = KEYS[2]
local estTokens = tonumber(ARGV[1])
local ttl       = tonumber(ARGV[2])

local newCount = redis.call("DECR", countKey)
if newCount < 0 then
    redis.call("SET", countKey, 0)
    redis.call("EXPIRE", countKey, ttl)
end

local newToks = redis.call("INCRBY", tokenKey, -estTokens)
if newToks < 0 then
    redis.call("SET", tokenKey, 0)
    redis.call("EXPIRE", tokenKey, ttl)
end

return newCount
`

// RateLimiter meters generations per client per UTC day using atomic
// Redis Lua scripts.
type RateLimiter struct {
	redis  *redis.Client
	limits Limits

	checkReserveScript *redis.Script
	recordUsageScript  *redis.Script
	releaseScript      *redis.Script
}

// NewRateLimiter creates a limiter with pre-compiled Lua scripts.
func NewRateLimiter(redisClient *redis.Client, limits Limits) *RateLimiter {
	return &RateLimiter{
		redis:              redisClient,
		limits:             limits,
		checkReserveScript: redis.NewScript(checkReserveLuaScript),
		recordUsageScript:  redis.NewScript(recordUsageLuaScript),
		releaseScript:      redis.NewScript(releaseLuaScript),
	}
}

// dailyTTL keeps counters a little past the UTC day boundary.
const dailyTTL = 90000 // 25 hours

func (r *RateLimiter) keys(clientID string) (countKey, tokenKey, costKey string) {
	day := time.Now().UTC().Format("2006-01-02")
	countKey = fmt.Sprintf("leadroom:gen:%s:count:%s", clientID, day)
	tokenKey = fmt.Sprintf("leadroom:gen:%s:tokens:%s", clientID, day)
	costKey = fmt.Sprintf("leadroom:gen:%s:cost:%s", clientID, day)
	return
}

// Check reserves one generation and estTokens tokens if all ceilings
// allow it. A denial consumes nothing and returns ErrRateLimited.
func (r *RateLimiter) Check(ctx context.Context, clientID string, estTokens int) error {
	countKey, tokenKey, costKey := r.keys(clientID)

	result, err := r.checkReserveScript.Run(ctx, r.redis,
		[]string{countKey, tokenKey, costKey},
		estTokens,
		r.limits.DailyGenerations,
		r.limits.DailyTokens,
		r.limits.DailyCostUSD,
		dailyTTL,
	).Slice()
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	if result[0].(int64) == 1 {
		return nil
	}

	switch result[1].(int64) {
	case 1:
		return fmt.Errorf("%w: daily generation limit reached for client %s", domain.ErrRateLimited, clientID)
	case 2:
		return fmt.Errorf("%w: daily token limit reached for client %s", domain.ErrRateLimited, clientID)
	default:
		return fmt.Errorf("%w: daily cost limit reached for client %s", domain.ErrRateLimited, clientID)
	}
}

// Record settles a reservation made by Check against the actual token
// usage and accrues the call's cost.
func (r *RateLimiter) Record(ctx context.Context, clientID string, estTokens, promptTokens, completionTokens int, cost float64) error {
	_, tokenKey, costKey := r.keys(clientID)

	actual := promptTokens + completionTokens
	delta := actual - estTokens

	err := r.recordUsageScript.Run(ctx, r.redis,
		[]string{tokenKey, costKey},
		delta,
		cost,
		dailyTTL,
	).Err()
	if err != nil {
		return fmt.Errorf("rate limit record: %w", err)
	}
	return nil
}

// Release undoes a reservation when the pipeline failed before any
// generation happened, returning both the generation slot and the
// token estimate. Completed generations, fallback included, settle
// through Record instead and keep their slot.
func (r *RateLimiter) Release(ctx context.Context, clientID string, estTokens int) error {
	countKey, tokenKey, _ := r.keys(clientID)
	if err := r.releaseScript.Run(ctx, r.redis, []string{countKey, tokenKey}, estTokens, dailyTTL).Err(); err != nil {
		return fmt.Errorf("rate limit release: %w", err)
	}
	return nil
}
