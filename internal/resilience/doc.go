// Package resilience groups fault-isolation helpers for notice delivery.
//
// Delivery is fire-and-forget with a single attempt, so the only pattern used
// is a circuit breaker: once the tracker keeps failing, deliveries are
// rejected locally instead of tying up workers until the timeouts expire.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.TrackerAPIConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return client.Deliver(ctx, notice)
//	})
package resilience
