package circuit_breaker

import "time"

func SetClock(cb CircuitBreaker, now func() time.Time) {
	cb.(*circuitBreaker).now = now
}
