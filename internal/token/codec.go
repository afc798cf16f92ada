// Package token extracts the subject id from a Noosh session token.
//
// The token is a compact JWT whose payload carries a userId claim. The
// signature is deliberately not verified: this is a convenience extraction
// for load generation, not a security boundary. Decoding is best-effort and
// degrades to an empty subject id on any malformed input; callers fall back
// to the account-info endpoint when the id is absent.
package token

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeSubjectID returns the userId claim embedded in the token payload, or
// "" when the token does not have three segments, the payload is not valid
// base64url/JSON, or the claim is missing. It never panics.
func DecodeSubjectID(tok string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	switch v := claims["userId"].(type) {
	case string:
		return v
	case float64:
		// Numeric ids arrive as JSON numbers.
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
