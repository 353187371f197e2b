package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"calcledger/docs"
	"calcledger/internal/config"
	"calcledger/internal/handler"
	authmiddleware "calcledger/internal/middleware"
	"calcledger/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	calculationHandler *handler.CalculationHandler,
	userRepo repository.UserRepository,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/users/register", userHandler.Register)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users/refresh", userHandler.Refresh)
	e.POST("/users/logout", userHandler.Logout)
	e.GET("/users/:id", userHandler.GetUser)

	// Secured routes: echo-jwt verifies signature and expiry, CurrentUser then
	// resolves the subject to a fresh, active user record.
	secured := e.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(cfg.JWTSecret),
		}),
		authmiddleware.CurrentUser(userRepo),
	)

	secured.GET("/users/me", userHandler.Me)
	secured.PUT("/users/:id", userHandler.UpdateUser)
	secured.POST("/users/:id/change-password", userHandler.ChangePassword)
	secured.POST("/users/:id/deactivate", userHandler.Deactivate)
	secured.DELETE("/users/:id", userHandler.DeleteUser)

	secured.POST("/calculations", calculationHandler.Create)
	secured.GET("/calculations", calculationHandler.List)
	secured.GET("/calculations/:id", calculationHandler.Get)
	secured.PUT("/calculations/:id", calculationHandler.Update)
	secured.DELETE("/calculations/:id", calculationHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
