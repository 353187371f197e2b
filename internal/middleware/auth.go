package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "calcledger/internal/errors"
	"calcledger/internal/model"
	"calcledger/internal/repository"
)

const currentUserKey = "current_user"

func unauthenticated() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: "could not validate credentials",
		Code:  "UNAUTHENTICATED",
	})
}

// CurrentUser resolves the already-verified bearer token to a fresh user
// record. The token is trusted only for its subject id; the user is always
// re-read from the directory so deactivation and deletion take effect
// immediately.
func CurrentUser(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthenticated()
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthenticated()
			}

			subject, err := claims.GetSubject()
			if err != nil {
				return unauthenticated()
			}

			userID, err := uuid.Parse(subject)
			if err != nil {
				return unauthenticated()
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil {
				return unauthenticated()
			}

			if !user.IsActive {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInactiveUser)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the user resolved by CurrentUser.
func UserFromContext(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(currentUserKey).(*model.User)
	return user, ok
}
