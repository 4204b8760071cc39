package jwt

import (
	"errors"
	"time"

	"metaserver/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Subject kinds embedded in tokens. User and server sessions share the same
// signing secret but are not interchangeable.
const (
	KindUser   = "user"
	KindServer = "server"
	KindProof  = "proof"
)

// GenerateToken creates a new session JWT for a given user ID.
func GenerateToken(userID uint) (string, error) {
	return generate(userID, KindUser, time.Hour*24*7)
}

// GenerateServerToken creates a session JWT for a registered game server.
func GenerateServerToken(serverID uint) (string, error) {
	return generate(serverID, KindServer, time.Hour*24*7)
}

// GenerateProof creates a short-lived proof token a user hands to a game
// server to prove registration with this metaserver. Proofs are stateless:
// rotating the signing secret invalidates all of them at once.
func GenerateProof(userID uint) (string, error) {
	return generate(userID, KindProof, time.Minute*30)
}

func generate(id uint, kind string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  id,
		"kind": kind,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ParseSubject validates tokenString and returns the subject ID if the token
// carries the expected kind.
func ParseSubject(tokenString, kind string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	if k, _ := claims["kind"].(string); k != kind {
		return 0, errors.New("wrong token kind")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("missing subject")
	}
	return uint(sub), nil
}

// VerifyProof reports whether proof is a valid proof token for userID.
func VerifyProof(userID uint, proof string) bool {
	id, err := ParseSubject(proof, KindProof)
	return err == nil && id == userID
}
