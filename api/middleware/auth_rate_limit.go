package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/warehousepos-backend/api/responses"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
)

// maxCredentialBody caps how much of a login body is buffered for the
// username check.
const maxCredentialBody = 8 << 10

// RateLimitStore is the counter surface the login throttle needs.
type RateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy is a fixed-window budget per client IP and per
// username for one credential endpoint.
type AuthRateLimitPolicy struct {
	name      string
	window    time.Duration
	ipLimit   int
	userLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, userLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, userLimit: userLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.userLimit > 0)
}

// budget is one counter a request must stay within.
type budget struct {
	kind  string
	value string
	limit int
}

func (p AuthRateLimitPolicy) budgets(ip, userHash string) []budget {
	var out []budget
	if p.ipLimit > 0 && ip != "" {
		out = append(out, budget{kind: "ip", value: ip, limit: p.ipLimit})
	}
	if p.userLimit > 0 && userHash != "" {
		out = append(out, budget{kind: "user", value: userHash, limit: p.userLimit})
	}
	return out
}

func (p AuthRateLimitPolicy) scope(b budget) string {
	return p.name + ":" + b.kind + ":" + b.value
}

// AuthRateLimit throttles credential guessing. Every attempt counts, whether
// or not the password turns out to be right; usernames are compared
// case-insensitively and only their hash reaches the store.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var userHash string
			if policy.userLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxCredentialBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if username := usernameFromBody(body); username != "" {
					userHash = hashValue(username)
				}
			}

			for _, b := range policy.budgets(clientIP(r), userHash) {
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(policy.scope(b)), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(b.limit) {
					rejectAttempt(ctx, logg, w, policy, b, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, b budget, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"scope":          b.kind,
			"key":            b.value,
			"attempts":       count,
			"limit":          b.limit,
			"window_seconds": int(policy.window.Seconds()),
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first forwarded hop; tills usually sit behind the
// shop's reverse proxy.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func usernameFromBody(payload []byte) string {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Username))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
