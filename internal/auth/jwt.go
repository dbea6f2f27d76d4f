package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// TokenClaims is what a validated token says about its bearer.
type TokenClaims struct {
	UserID      string
	Email       string
	HouseholdID string
	Role        string
}

func getJWTSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return []byte(secret), nil
}

func GenerateToken(user *User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("empty userID passed to GenerateToken")
	}
	if user.HouseholdID == "" {
		return "", errors.New("user has no household")
	}

	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"userID":      user.ID,
		"email":       user.Email,
		"householdID": user.HouseholdID,
		"role":        user.Role,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenString string) (*TokenClaims, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	out := &TokenClaims{}
	out.UserID, _ = claims["userID"].(string)
	out.Email, _ = claims["email"].(string)
	out.HouseholdID, _ = claims["householdID"].(string)
	out.Role, _ = claims["role"].(string)

	if out.UserID == "" || out.HouseholdID == "" {
		return nil, errors.New("invalid token claims")
	}
	return out, nil
}
