package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cookieMaxAge = 30 * 24 * time.Hour

// Cookies links a browser to its session-store namespace. The session id is
// a uuid wrapped in a signed JWT cookie; a cookie that fails signature or
// shape checks reads as a fresh anonymous browser, never an error.
type Cookies struct {
	name   string
	secret []byte
}

func NewCookies(name string, secret string) *Cookies {
	return &Cookies{name: name, secret: []byte(secret)}
}

type sidClaims struct {
	jwt.RegisteredClaims
}

// Read extracts the session id from the request cookie.
func (c *Cookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	var claims sidClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return "", false
	}

	return claims.ID, true
}

// Ensure returns the request's session id, minting and setting a new one
// when the browser arrived without a usable cookie.
func (c *Cookies) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if sid, ok := c.Read(r); ok {
		return sid, nil
	}

	sid := uuid.NewString()
	now := time.Now()
	claims := sidClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sid,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(cookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sid, nil
}
