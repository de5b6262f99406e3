package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HMAC-signed access token and extracts the Principal
// from its user_id, org_id and role claims.
func (p *Parser) Parse(token string) (model.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("invalid token claims")
	}

	userID, err := claimUUID(claims, "user_id")
	if err != nil {
		return model.Principal{}, err
	}
	orgID, err := claimUUID(claims, "org_id")
	if err != nil {
		return model.Principal{}, err
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return model.Principal{}, fmt.Errorf("missing role claim")
	}

	return model.Principal{
		UserID: userID,
		OrgID:  orgID,
		Role:   model.Role(role),
	}, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s claim", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim", key)
	}
	return id, nil
}
