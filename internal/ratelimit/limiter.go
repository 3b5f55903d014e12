// Package ratelimit provides request-admission control using fixed-window
// counters keyed by (limit class, client identifier). It includes HTTP
// middleware that classifies requests by path and sets standard rate limit
// response headers.
//
// The limiter is in-process only: state lives for the lifetime of the process
// and is not shared across instances. Deployments running multiple processes
// get independent budgets per process.
package ratelimit

import "time"

// Class names a rate-limit policy applied based on request path.
type Class string

const (
	// ClassAPI covers public API reads.
	ClassAPI Class = "api"
	// ClassUsernameCheck throttles username availability probes to slow
	// enumeration.
	ClassUsernameCheck Class = "usernameCheck"
	// ClassAuth covers login/signup, the brute-force surface.
	ClassAuth Class = "auth"
	// ClassGeneral is the default budget for everything else that opts in.
	ClassGeneral Class = "general"
)

// Budget is a class's window policy.
type Budget struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultBudgets are the per-class budgets: requests per 60-second window.
var DefaultBudgets = map[Class]Budget{
	ClassAPI:           {MaxRequests: 100, Window: time.Minute},
	ClassUsernameCheck: {MaxRequests: 30, Window: time.Minute},
	ClassAuth:          {MaxRequests: 10, Window: time.Minute},
	ClassGeneral:       {MaxRequests: 60, Window: time.Minute},
}

// Result reports the outcome of a limiter check, with enough information to
// populate the X-RateLimit-* and Retry-After headers.
type Result struct {
	Limited   bool          // Whether the request should be rejected
	Limit     int           // The class's max requests per window
	Remaining int           // Requests left in the current window
	ResetIn   time.Duration // Time until the current window resets
}

// Limiter is the rate limiting contract. Implementations must be safe for
// concurrent use.
type Limiter interface {
	// Check records a request for the identifier under the given class and
	// reports whether it exceeds the class budget.
	Check(identifier string, class Class) Result
}
