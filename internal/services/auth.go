package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// JWTClaims are the identity provider's claims. Subject is the user id.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService verifies identity tokens. Tokens are minted elsewhere; IssueToken
// exists for local tooling.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(userID uuid.UUID, email, name string, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	users        repos.UserRepo
	jwtSecretKey string
	clock        Clock
}

func NewAuthService(log *logger.Logger, users repos.UserRepo, jwtSecretKey string, clock Clock) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: jwtSecretKey,
		clock:        clockOrDefault(clock),
	}
}

// subjectNamespace scopes the ids derived from non-uuid token subjects.
var subjectNamespace = uuid.MustParse("9d3b7a52-1f4e-5c8a-b6d0-2e7f4a1c9b63")

// UserIDForSubject maps a token subject onto a user id. UUID subjects are used
// as is; any other identity provider uid (Firebase, Auth0, ...) maps to a
// stable SHA1-derived uuid. An empty or nil subject yields uuid.Nil.
func UserIDForSubject(sub string) uuid.UUID {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(sub); err == nil {
		return id
	}
	return uuid.NewSHA1(subjectNamespace, []byte(sub))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if strings.TrimSpace(tokenString) == "" {
		return ctx, apperr.ErrUnauthorized
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.clock),
	)
	if err != nil {
		return ctx, fmt.Errorf("%w: failed to parse token: %v", apperr.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", apperr.ErrUnauthorized)
	}
	userID := UserIDForSubject(claims.Subject)
	if userID == uuid.Nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", apperr.ErrUnauthorized)
	}

	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: strings.TrimSpace(claims.Name),
		TokenString: tokenString,
	}
	if as.users != nil {
		if _, err := as.users.EnsureUser(dbctx.New(ctx), &types.User{
			ID:          userID,
			Email:       rd.Email,
			DisplayName: rd.DisplayName,
		}); err != nil {
			as.log.Warn("ensure user profile failed", "user_id", userID, "error", err)
			return ctx, err
		}
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) IssueToken(userID uuid.UUID, email, name string, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", apperr.Invalid("user id is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := as.clock()
	claims := JWTClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
