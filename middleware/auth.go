package middleware

import (
	"strings"

	"servicedesk/apperrors"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/services/identity"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves the bearer token of a request into the acting user.
// Session tokens are checked locally; Firebase ID tokens are verified by the
// identity provider. The token kind travels in the X-Token-Type header.
type Authenticator struct {
	Users    userRepo.UserRepository
	Sessions *utils.SessionTokens
	Identity identity.Provider
	Cache    utils.UserCache
}

// JWTAuthMiddleware rejects requests without a valid token for an active user
// and stores that user in the context under utils.CurrentUserKey.
func JWTAuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, apperrors.NewAuthError("missing or invalid Authorization header"))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.RespondError(c, apperrors.NewAuthError("missing or invalid Authorization header"))
			return
		}

		tokenType := strings.ToLower(strings.TrimSpace(c.GetHeader(utils.TokenTypeHeader)))
		if tokenType == "" {
			tokenType = utils.TokenTypeSession
		}

		var (
			uid string
			err error
		)
		switch tokenType {
		case utils.TokenTypeSession:
			if a.Sessions == nil {
				utils.RespondError(c, apperrors.NewAuthError("session tokens are not accepted by this server"))
				return
			}
			uid, err = a.Sessions.Subject(tokenString)
			if err != nil {
				err = apperrors.NewAuthError("invalid or expired token")
			}
		case utils.TokenTypeFirebase:
			if a.Identity == nil {
				utils.RespondError(c, apperrors.NewAuthError("firebase tokens are not accepted by this server"))
				return
			}
			uid, err = a.Identity.VerifyIDToken(c.Request.Context(), tokenString)
		default:
			utils.RespondError(c, apperrors.NewValidationError("unknown token type",
				apperrors.ValidationDetail{Field: utils.TokenTypeHeader, Message: "must be session or firebase"}))
			return
		}
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		user, err := a.loadUser(c, uid)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if !user.IsActive {
			utils.RespondError(c, apperrors.NewForbiddenError("account is deactivated"))
			return
		}

		c.Set(utils.CurrentUserKey, *user)
		c.Set(utils.TokenTypeKey, tokenType)
		c.Next()
	}
}

func (a *Authenticator) loadUser(c *gin.Context, uid string) (*models.User, error) {
	ctx := c.Request.Context()
	cache := a.Cache
	if cache == nil {
		cache = utils.NoopUserCache{}
	}
	if u, ok := cache.Get(ctx, uid); ok {
		return u, nil
	}

	user, err := a.Users.GetByID(ctx, uid)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			// A valid token for a removed user is a dead credential.
			return nil, apperrors.NewAuthError("user no longer exists")
		}
		utils.GetLogger().Error("Failed to load authenticated user", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	cache.Set(ctx, *user)
	return user, nil
}

// CurrentUser returns the user stored by JWTAuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(utils.CurrentUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
