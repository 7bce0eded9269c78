package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenParser validates shopper access tokens issued by the storefront's
// auth collaborator. Token issuance itself lives elsewhere; Issue exists for
// local development and tests.
type TokenParser struct {
	secretKey []byte
}

// NewTokenParser returns a parser for HMAC-signed tokens.
func NewTokenParser(secret string) *TokenParser {
	if secret == "" {
		return &TokenParser{}
	}
	return &TokenParser{secretKey: []byte(secret)}
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If expectedType is non-empty, the claim "typ" must match it.
func (p *TokenParser) ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	if p.secretKey == nil {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secretKey, nil
	})

	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}

// UserID validates an access token and returns its subject.
func (p *TokenParser) UserID(tokenStr string) (string, error) {
	claims, err := p.ParseAndValidateToken(tokenStr, "access")
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// Issue signs an access token for userID.
func (p *TokenParser) Issue(userID string, ttl time.Duration) (string, error) {
	if p.secretKey == nil {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"typ": "access",
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(p.secretKey)
}
