package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// ContextOrgIDKey is the gin context key the middleware stores the org id
// under.
const ContextOrgIDKey = "orgID"

// Claims carried by agency access tokens. Tokens are issued by the main CRM
// backend; this service only verifies them.
type Claims struct {
	OrgID string `json:"org_id"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 access tokens.
type JWTVerifier struct {
	jwtSecret string
	logger    *zap.Logger
}

func NewJWTVerifier(jwtSecret string, logger *zap.Logger) (*JWTVerifier, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{
		jwtSecret: jwtSecret,
		logger:    logger.Named("JWTVerifier"),
	}, nil
}

// VerifyToken checks the signature and validity of a token and extracts its
// claims.
func (v *JWTVerifier) VerifyToken(tokenString string) (*Claims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.jwtSecret), nil
	})
	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, model.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, model.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, model.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, model.ErrTokenInvalid
	}
	if claims.OrgID == "" {
		log.Warn("Token missing org_id claim")
		return nil, fmt.Errorf("%w: org_id missing", model.ErrTokenInvalid)
	}
	return claims, nil
}

// AuthMiddleware validates the bearer token and stores the org id in the
// request context.
func AuthMiddleware(verifier *JWTVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Authorization token is required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Invalid or expired token"})
			return
		}
		c.Set(ContextOrgIDKey, claims.OrgID)
		c.Next()
	}
}

// orgIDFromContext returns the org id stored by AuthMiddleware.
func orgIDFromContext(c *gin.Context) string {
	return c.GetString(ContextOrgIDKey)
}

func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
