package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// RoleAdmin is the clinician role; every other role is a pregnant user
const RoleAdmin = "ADMIN"

// cacheEntry stores cached JWT claims keyed by JTI (JWT ID)
type cacheEntry struct {
	token  string // a hit only counts for the exact token that was verified
	claims jwt.MapClaims
	exp    int64
}

// AuthMiddleware handles JWT validation and RBAC enforcement
// Validates tokens signed by Identity Service using mounted public key
// Uses JTI-based caching for performance optimization
type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	// L1 cache: in-memory cache keyed by JTI
	cache       sync.Map
	janitorStop chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
	logger      zerolog.Logger
}

const CacheCleanupInterval = 10 * time.Minute

// NewAuthMiddleware creates a new JWT authentication middleware
// publicKey: RSA public key from Identity Service (mounted via ConfigMap)
func NewAuthMiddleware(publicKey *rsa.PublicKey, logger zerolog.Logger) *AuthMiddleware {
	m := &AuthMiddleware{
		publicKey:   publicKey,
		janitorStop: make(chan struct{}),
		now:         time.Now,
		logger:      logger.With().Str("component", "auth").Logger(),
	}

	go m.startJanitor(CacheCleanupInterval)

	return m
}

// Context keys for storing user information
type contextKey string

const (
	UserIDKey     contextKey = "userID"
	RoleKey       contextKey = "role"
	TokenKey      contextKey = "token"
	UserEmailKey  contextKey = "userEmail"
	UserFirstName contextKey = "userFirstName"
	UserLastName  contextKey = "userLastName"
)

// Identity is the subset of claims handlers care about
type Identity struct {
	UserID    string
	Role      string
	Email     string
	FirstName string
	LastName  string
}

// DisplayName joins first and last name, falling back to the user id
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.UserID
	}
	return name
}

// GetClaimsFromCacheOrParse extracts claims from cache or parses token
// Uses JTI (JWT ID) for cache keying instead of full token string
// Returns claims, JTI, and error
func (m *AuthMiddleware) GetClaimsFromCacheOrParse(tokenString string) (jwt.MapClaims, string, error) {
	// Peek at the JTI without verifying the signature yet
	parser := jwt.NewParser()
	unverifiedToken, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, "", err
	}

	claims, ok := unverifiedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		// Tokens should always carry a JTI; the fallback key keeps caching per token
		role, _ := claims["role"].(string)
		userID, _ := claims["sub"].(string)
		jti = fmt.Sprintf("%s-%s-%s", tokenString[:min(20, len(tokenString))], role, userID[:min(8, len(userID))])
		m.logger.Debug().Str("role", role).Str("user_id", userID).Msg("token missing JTI, using fallback cache key")
	}

	var exp int64
	switch v := claims["exp"].(type) {
	case float64:
		exp = int64(v)
	case int64:
		exp = v
	default:
		return nil, "", errors.New("missing expiration claim")
	}

	if m.now().Unix() > exp {
		return nil, "", errors.New("token expired")
	}

	if entry, ok := m.cache.Load(jti); ok {
		cached := entry.(cacheEntry)
		if cached.token == tokenString && m.now().Unix() < cached.exp {
			return cached.claims, jti, nil
		}
		m.cache.Delete(jti)
	}

	// Full RSA validation on cache miss
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	})
	if err != nil {
		return nil, "", err
	}
	if !token.Valid {
		return nil, "", jwt.ErrSignatureInvalid
	}

	verifiedClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	m.cache.Store(jti, cacheEntry{token: tokenString, claims: verifiedClaims, exp: exp})

	return verifiedClaims, jti, nil
}

// Authenticate validates a token and returns the identity it carries
func (m *AuthMiddleware) Authenticate(tokenString string) (Identity, error) {
	claims, _, err := m.GetClaimsFromCacheOrParse(tokenString)
	if err != nil {
		return Identity{}, err
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return Identity{}, errors.New("missing or invalid user ID claim")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("missing or invalid role claim")
	}

	id := Identity{UserID: userID, Role: role}
	id.Email, _ = claims["email"].(string)
	id.FirstName, _ = claims["first_name"].(string)
	id.LastName, _ = claims["last_name"].(string)
	return id, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(authHeader string) (string, bool) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth is middleware that validates JWT token from Authorization header
// Adds the identity and raw token to request context
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := m.now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug().Str("path", r.URL.Path).Msg("missing authorization header")
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			m.logger.Debug().Str("path", r.URL.Path).Msg("invalid authorization header format")
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		id, err := m.Authenticate(tokenString)
		if err != nil {
			m.logger.Info().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		m.logger.Debug().
			Str("user_id", id.UserID).
			Str("role", id.Role).
			Dur("elapsed", time.Since(start)).
			Msg("token validated")

		next(w, r.WithContext(WithIdentity(r.Context(), id, tokenString)))
	}
}

// WithIdentity stores an authenticated identity on ctx
func WithIdentity(ctx context.Context, id Identity, token string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.UserID)
	ctx = context.WithValue(ctx, RoleKey, id.Role)
	ctx = context.WithValue(ctx, TokenKey, token)
	ctx = context.WithValue(ctx, UserEmailKey, id.Email)
	ctx = context.WithValue(ctx, UserFirstName, id.FirstName)
	ctx = context.WithValue(ctx, UserLastName, id.LastName)
	return ctx
}

// RequireRole enforces role-based access control
// Only allows access if user has the required role
func (m *AuthMiddleware) RequireRole(requiredRole string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAnyRole([]string{requiredRole}, next)
}

// RequireAnyRole allows access if user has any of the given roles
func (m *AuthMiddleware) RequireAnyRole(allowedRoles []string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRole(r.Context())
		if !ok {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				next(w, r)
				return
			}
		}

		m.logger.Info().Strs("required", allowedRoles).Str("role", role).Msg("role mismatch")
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

// startJanitor periodically cleans up expired cache entries
func (m *AuthMiddleware) startJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if deleted := m.purgeExpired(); deleted > 0 {
				m.logger.Debug().Int("purged", deleted).Msg("token cache janitor purged expired entries")
			}
		case <-m.janitorStop:
			return
		}
	}
}

func (m *AuthMiddleware) purgeExpired() int {
	now := m.now().Unix()
	deleted := 0
	m.cache.Range(func(key, value interface{}) bool {
		if entry, ok := value.(cacheEntry); ok && now >= entry.exp {
			m.cache.Delete(key)
			deleted++
		}
		return true
	})
	return deleted
}

// Stop stops the background janitor (for graceful shutdown)
func (m *AuthMiddleware) Stop() {
	m.stopOnce.Do(func() { close(m.janitorStop) })
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetRole extracts role from request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetToken extracts token string from request context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// IsAdmin checks if the user in context is an ADMIN
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRole(ctx)
	return ok && role == RoleAdmin
}

// GetUserEmail extracts user email from request context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetUserFirstName extracts user first name from request context
func GetUserFirstName(ctx context.Context) (string, bool) {
	firstName, ok := ctx.Value(UserFirstName).(string)
	return firstName, ok
}

// GetUserLastName extracts user last name from request context
func GetUserLastName(ctx context.Context) (string, bool) {
	lastName, ok := ctx.Value(UserLastName).(string)
	return lastName, ok
}
