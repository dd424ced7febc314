package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "cardioalert"

var (
	accessSecret  string
	refreshSecret string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
)

// InitJWT initializes JWT secrets and expiry times
func InitJWT(accessSec, refreshSec string, accessExp, refreshExp time.Duration) {
	accessSecret = accessSec
	refreshSecret = refreshSec
	accessExpiry = accessExp
	refreshExpiry = refreshExp
}

// Claims represents JWT custom claims
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a short-lived JWT access token
func GenerateAccessToken(userID uint, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(accessSecret))
}

// GenerateRefreshToken generates a random opaque refresh token
func GenerateRefreshToken() (string, error) {
	return uuid.New().String(), nil
}

// ValidateAccessToken parses an HS256 access token issued by this service
func ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(accessSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}

// HashRefreshToken creates a keyed SHA-256 hash of the refresh token for storage
func HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(refreshSecret + ":" + token))
	return hex.EncodeToString(hash[:])
}

// GetRefreshTokenExpiry returns the refresh token expiry duration
func GetRefreshTokenExpiry() time.Duration {
	return refreshExpiry
}
