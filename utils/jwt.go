package utils

import (
	"errors"
	"time"

	"apptdesk/config"

	"github.com/golang-jwt/jwt"
)

// ErrStaffAuthDisabled is returned when no JWT secret is configured.
var ErrStaffAuthDisabled = errors.New("staff authentication is not configured")

func secretKey() ([]byte, error) {
	if config.AppConfig.JWTSecret == "" {
		return nil, ErrStaffAuthDisabled
	}
	return []byte(config.AppConfig.JWTSecret), nil
}

// GenerateStaffToken creates a signed JWT for a front-desk staff member.
func GenerateStaffToken(subject string, duration time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "staff",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateStaffToken parses a token string and returns its subject if it is a valid staff token.
func ValidateStaffToken(tokenString string) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != "staff" {
		return "", errors.New("token is not a staff token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
