package httpmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

const (
	// UserIDHeader is trusted only when the authenticator runs with dev headers enabled.
	UserIDHeader = "X-User-ID"

	requesterKey = "requester_id"
)

var (
	errMissingCredentials = errors.New("missing credentials")
	errBadAuthHeader      = errors.New("bad auth header")
	errMissingSubject     = errors.New("missing sub")
)

// Authenticator resolves the requesting user from a bearer token.
type Authenticator struct {
	secret    []byte
	devHeader bool
	logger    *logger.Logger
}

// NewAuthenticator creates an Authenticator. An HS256 secret verifies tokens; devHeader
// additionally trusts the X-User-ID header.
func NewAuthenticator(secret string, devHeader bool, log *logger.Logger) *Authenticator {
	return &Authenticator{
		secret:    []byte(secret),
		devHeader: devHeader,
		logger:    log.WithFields(zap.String("component", "auth")),
	}
}

// UserIDFromAuthHeader extracts the user identifier from an Authorization header value.
func (a *Authenticator) UserIDFromAuthHeader(h string) (string, error) {
	if h == "" {
		return "", errMissingCredentials
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errBadAuthHeader
	}
	return a.UserIDFromToken(parts[1])
}

// UserIDFromToken verifies a raw token and returns its subject.
func (a *Authenticator) UserIDFromToken(tokenStr string) (string, error) {
	if len(a.secret) == 0 {
		return "", errMissingCredentials
	}
	if strings.Count(tokenStr, ".") != 2 {
		return "", errBadAuthHeader
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

// Resolve identifies the requester of r. The websocket stream passes the token
// as a query parameter because browsers cannot set headers on upgrade requests.
func (a *Authenticator) Resolve(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		return a.UserIDFromAuthHeader(h)
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return a.UserIDFromToken(token)
	}
	if a.devHeader {
		if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
			return id, nil
		}
	}
	return "", errMissingCredentials
}

// Middleware rejects unauthenticated requests with 401 and records the requester.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.Resolve(c.Request)
		if err != nil {
			a.logger.Debug("rejected request", zap.String("path", c.Request.URL.Path), zap.Error(err))
			appErr := apperrors.Unauthorized("authentication required")
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
			return
		}
		c.Set(requesterKey, userID)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequesterID returns the authenticated user of the request, or "".
func RequesterID(c *gin.Context) string {
	return c.GetString(requesterKey)
}
