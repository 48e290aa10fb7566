package shipments_api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

func (a *ShipmentsAPI) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter == nil || a.lookupLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		now := time.Now().UTC()
		key := fmt.Sprintf("rl:lookup:%s:%s", clientIP(r), now.Format("200601021504"))
		allowed, n, err := a.limiter.Allow(r.Context(), key, a.lookupLimit, 70*time.Second)
		if err != nil {
			// redis недоступен: не блокируем публичный трекинг
			slog.Warn("lookup rate limiter failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			slog.Warn("lookup rate limit exceeded", "ip", clientIP(r), "count", n)
			w.Header().Set("Retry-After", strconv.Itoa(60-now.Second()))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
