package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret:   []byte(secret),
		CookieName:   "admin_session",
		SecureCookie: secure, // true in prod (TLS)
		TTL:          ttl,
	}}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a session cookie for adminID after credential checks passed.
func (a *AuthManager) Mint(w http.ResponseWriter, adminID string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   adminID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Secure:   a.cfg.SecureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(a.cfg.TTL),
	})
	return signed, nil
}

// Verify parses the session cookie and returns the admin id.
func (a *AuthManager) Verify(r *http.Request) (string, error) {
	c, err := r.Cookie(a.cfg.CookieName)
	if err != nil {
		return "", errors.New("missing session cookie")
	}
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.cfg.HMACSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid session")
	}
	if claims.Role != "admin" || claims.Subject == "" {
		return "", errors.New("not an admin session")
	}
	return claims.Subject, nil
}
