package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sanctra/sanctra/fields"
)

// JWTAuth provides an encapsulation for jwt auth
type JWTAuth struct {
	SanctraConfig fields.SanctraConfig
	Key           []byte
}

// Init loads the signing key from the system config, falling back to a
// random per-process key when none is configured.
func (j *JWTAuth) Init() {
	if j.SanctraConfig.JWTKey != "" {
		j.Key = []byte(j.SanctraConfig.JWTKey)
		return
	}
	key, _ := GenerateSecretKey(32)
	j.Key = key
}

// GenerateJWT signs a token for username, valid for one hour.
func (j *JWTAuth) GenerateJWT(username string) (string, error) {
	if len(j.Key) == 0 {
		return "", errors.New("empty jwt key")
	}
	claims := TokenClaims{
		username,
		jwt.StandardClaims{
			IssuedAt:  time.Now().UTC().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).UTC().Unix(),
			Issuer:    "sanctra",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Key)
}

// VerifyJWT validates a token against our signing key and claim shape.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("token is invalid")
}

// TokenClaims sanctra standard claim
type TokenClaims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}
