package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/user/model"
)

type Claims struct {
	UserID   uint64
	Username string
	Role     string
}

type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, signingMethod, issuer string, ttl time.Duration) (*TokenManager, error) {
	method := jwt.GetSigningMethod(signingMethod)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q", signingMethod)
	}
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue 签发带用户名和角色的令牌
func (m *TokenManager) Issue(user model.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(m.method, jwt.MapClaims{
		"sub":      strconv.FormatUint(user.ID, 10),
		"username": user.Username,
		"role":     user.Role,
		"iss":      m.issuer,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, bizerr.Public(bizerr.ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, bizerr.ErrInvalidToken
	}
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	sub, _ := mapClaims.GetSubject()
	userID, _ := strconv.ParseUint(sub, 10, 64)
	if username == "" || role == "" {
		return Claims{}, bizerr.ErrInvalidToken
	}
	return Claims{UserID: userID, Username: username, Role: role}, nil
}
