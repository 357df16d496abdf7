package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidResetToken covers every way a reset token can be unusable:
// bad signature, expired, issued for another user or for an older password.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ErrInvalidUID is returned when an encoded user id cannot be decoded.
var ErrInvalidUID = errors.New("invalid encoded user id")

const resetPurpose = "password_reset"

// resetKey derives the reset signing key so that a reset token can never be
// accepted as an access token.
func resetKey(secret string) []byte {
	return []byte(secret + "|" + resetPurpose)
}

// passwordFingerprint binds a reset token to the current password hash.
// Changing the password changes the fingerprint, which invalidates every
// token issued before, including the one just used.
func passwordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

// NewResetToken issues a signed, time-limited password reset token.
func NewResetToken(secret string, userID uint64, passwordHash string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"typ": resetPurpose,
		"pwd": passwordFingerprint(passwordHash),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(resetKey(secret))
}

// VerifyResetToken checks a token against the user it claims to be for.
func VerifyResetToken(secret, token string, userID uint64, passwordHash string) error {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return resetKey(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(strconv.FormatUint(userID, 10)),
	)
	if err != nil || !tok.Valid {
		return ErrInvalidResetToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidResetToken
	}
	if typ, _ := claims["typ"].(string); typ != resetPurpose {
		return ErrInvalidResetToken
	}
	if fp, _ := claims["pwd"].(string); fp != passwordFingerprint(passwordHash) {
		return ErrInvalidResetToken
	}
	return nil
}

// EncodeUID encodes a user id for use in a URL path segment.
func EncodeUID(id uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID.  Padding is tolerated.
func DecodeUID(s string) (uint64, error) {
	b, err := base64.RawURLEncoding.DecodeString(trimPadding(s))
	if err != nil {
		return 0, ErrInvalidUID
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return id, nil
}

func trimPadding(s string) string {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return s
}
