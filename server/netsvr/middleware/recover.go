package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 只攔得到 handler goroutine 的 panic。
// LaunchQueue 派工 goroutine 裡的 panic 不會經過這裡，得靠佇列自己的錯誤回報。
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
