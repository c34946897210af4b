package main

import "time"

// retryPolicy re-checks a condition a fixed number of times with a fixed
// pause between attempts. It is deliberately not a backoff: the waits here
// cover filesystem state appearing after a session bootstrap, nothing
// load-dependent.
type retryPolicy struct {
	attempts int
	interval time.Duration
}

// do runs check until it reports true or the attempts are used up. The
// first attempt runs immediately.
func (r retryPolicy) do(check func() bool) bool {
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			time.Sleep(r.interval)
		}
		if check() {
			return true
		}
	}

	return false
}
