package server

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const userIDKey contextKey = "user_id"

// Claims полезная нагрузка токена доступа
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken выпускает токен HS256 для пользователя
func GenerateToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken проверяет подпись и срок действия токена и возвращает идентификатор пользователя
func ParseToken(secret []byte, tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	if claims.UserID != "" {
		return claims.UserID, nil
	}
	return claims.Subject, nil
}

// AuthUnaryInterceptor требует bearer-токен для методов с указанным префиксом.
// Идентификатор пользователя из токена кладется в контекст.
func AuthUnaryInterceptor(secret []byte, methodPrefix string, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, methodPrefix) {
			return handler(ctx, req)
		}

		tokenStr := bearerToken(ctx)
		if tokenStr == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		userID, err := ParseToken(secret, tokenStr)
		if err != nil || userID == "" {
			WithRequestID(ctx, logger).Info("Rejected token",
				zap.String("method", info.FullMethod),
				zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(WithUserID(ctx, userID), req)
	}
}

// WithUserID кладет идентификатор аутентифицированного пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext возвращает идентификатор аутентифицированного пользователя
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	for _, value := range md.Get("authorization") {
		if token, found := strings.CutPrefix(value, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
