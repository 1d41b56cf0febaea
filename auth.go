package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameLen = 64

// dummyHash is compared against when the username is unknown so a miss
// costs the same bcrypt time as a hit.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// validate trims the username and returns a message describing the first
// problem, or "" when the request can go to the database.
func (r *loginRequest) validate() string {
	r.Username = strings.TrimSpace(r.Username)
	switch {
	case r.Username == "" || r.Password == "":
		return "username and password are required"
	case len(r.Username) > maxUsernameLen:
		return "username is too long"
	case len(r.Password) > 72:
		// bcrypt ignores everything past 72 bytes.
		return "password is too long"
	}
	return ""
}

// bearerToken extracts the token from an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// login verifies username/password and returns the user's auth token.
// POST /api/login (public, rate limited per IP).
func (h *Handler) login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := body.validate(); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	u, found, err := h.userByUsername(c, body.Username)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	hash := dummyHash
	if found {
		hash = []byte(u.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(body.Password)) != nil || !found {
		log.Printf("[login] rejected login for %q from %s", body.Username, c.ClientIP())
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// userByUsername reports found=false, with a nil error, for an unknown user.
func (h *Handler) userByUsername(ctx context.Context, username string) (user, bool, error) {
	u, err := queryOne[user](h.db, ctx,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
	if errors.Is(err, pgx.ErrNoRows) {
		return u, false, nil
	}
	if err != nil {
		return u, false, err
	}
	return u, true, nil
}

// authMiddleware resolves the Bearer token to a user and sets user_id on the
// context. Every request past it reads user_id, never the token.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		var userID int
		err := h.db.QueryRow(c, "SELECT id FROM users WHERE auth_token = @token",
			pgx.NamedArgs{"token": token}).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if err != nil {
			log.Printf("[authMiddleware] token lookup: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to verify token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
