package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterPerIP(t *testing.T) {
	rl := NewIPRateLimiter(1, 2, time.Minute)
	defer rl.Close()

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("other IPs have their own quota")
	}
	rl.Close()
}
