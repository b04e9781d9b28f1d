package memory

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

type antiForgeryClaims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

// IssueAntiForgeryToken signs a token bound to purpose.
func (h *Host) IssueAntiForgeryToken(ctx context.Context, purpose string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := h.now()
	claims := antiForgeryClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.tokenSecret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("purpose", purpose).Wrap(err)
	}
	return signed, nil
}

// VerifyAntiForgeryToken checks the signature, expiry and purpose of token.
func (h *Host) VerifyAntiForgeryToken(_ context.Context, token, purpose string) bool {
	if token == "" {
		return false
	}
	var claims antiForgeryClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return h.tokenSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		h.logger.Debug().Err(err).Str("purpose", purpose).Msg("anti-forgery token rejected")
		return false
	}
	return claims.Purpose == purpose
}
