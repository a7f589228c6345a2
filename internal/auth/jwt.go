package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

// Claims carries the actor identity issued by the account service.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// Parser validates access tokens. Token issuance lives in the account
// service; this service only reads the actor out of the bearer token.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}
	if claims.UserID == 0 {
		return model.Principal{}, fmt.Errorf("token has no user id")
	}

	role := model.UserRole(claims.Role)
	switch role {
	case model.RoleAdmin, model.RoleLandlord, model.RoleTenant:
	default:
		return model.Principal{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return model.Principal{UserID: claims.UserID, Role: role}, nil
}
