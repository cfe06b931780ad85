package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/pkg/config"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

// AuthService verifies the access tokens issued by the identity
// provider. Token issuance lives outside this API.
type AuthService struct {
	cfg config.JWTConfig
}

func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and verifies an HS256 access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing teacher identity")
	}
	return claims, nil
}
