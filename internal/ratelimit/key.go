package ratelimit

import (
	"fmt"
	"strings"
)

// AttemptKey builds a limiter key for an auth attempt. Keys combine the
// action, the target email, and the caller address so one address cannot
// exhaust another account's budget.
func AttemptKey(action, email, remoteAddr string) string {
	action = strings.TrimSpace(action)
	email = strings.ToLower(strings.TrimSpace(email))
	remoteAddr = strings.TrimSpace(remoteAddr)
	if action == "" || email == "" {
		return ""
	}
	if remoteAddr == "" {
		return fmt.Sprintf("%s:%s", action, email)
	}
	return fmt.Sprintf("%s:%s:%s", action, email, remoteAddr)
}
