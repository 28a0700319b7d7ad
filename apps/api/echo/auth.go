package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/auth"
	"github.com/trezcool/sanaa/core/role"
)

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

type jwtHelper struct {
	conf   *core.Config
	config middleware.JWTConfig
}

func newJWTHelper(conf *core.Config) *jwtHelper {
	return &jwtHelper{
		conf: conf,
		config: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (h *jwtHelper) getUserClaims(usr auth.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    h.conf.AppName,
			Subject:   usr.Email,
			ExpiresAt: now.Add(h.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		Name:         usr.Name,
		IsAdmin:      usr.IsAdmin,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (h *jwtHelper) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(h.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(h.config.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextUser rebuilds the signed-in identity from the request claims.
func contextUser(ctx echo.Context) (auth.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return auth.User{}, err
	}
	return auth.User{Email: claims.Email, Name: claims.Name, IsAdmin: claims.IsAdmin}, nil
}

// refreshToken re-issues a token within the refresh window, re-resolving the
// admin capability so role revocations take effect on refresh.
func (h *jwtHelper) refreshToken(ctx echo.Context, roleSvc *role.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(h.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	isAdmin, err := roleSvc.ResolveAdmin(ctx.Request().Context(), claims.Email)
	if err != nil {
		return "", errors.Wrap(err, "resolving admin capability")
	}

	usr := auth.User{Email: claims.Email, Name: claims.Name, IsAdmin: isAdmin}
	token, err := h.generateToken(h.getUserClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

// API handlers

type authApi struct {
	jwt      *jwtHelper
	broker   *auth.Broker
	verifier auth.TokenVerifier
	roleSvc  *role.Service
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, helper *jwtHelper, deps ServerDeps) {
	api := authApi{
		jwt:      helper,
		broker:   deps.AuthBroker,
		verifier: deps.Verifier,
		roleSvc:  deps.RoleSvc,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)

	authed := ag.Group("", jwt)
	authed.POST("/token-refresh", api.refreshToken)
	authed.POST("/logout", api.logout)
	authed.GET("/me", api.me)
}

// login exchanges an upstream ID token (from the frontend's OAuth popup) for
// an app JWT.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if data.IDToken == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "id_token", Error: "this field is required"})
	}

	usr, err := api.verifier.Verify(ctx.Request().Context(), data.IDToken)
	if err != nil {
		if errors.Cause(err) == auth.ErrAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "verifying ID token")
	}

	usr, err = api.broker.SignIn(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}

	token, err := api.jwt.generateToken(api.jwt.getUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: &usr})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := api.jwt.refreshToken(ctx, api.roleSvc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) logout(ctx echo.Context) error {
	api.broker.SignOut()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	LoginRequest struct {
		IDToken string `json:"id_token"`
	}

	LoginResponse struct {
		Token string     `json:"token"`
		User  *auth.User `json:"user,omitempty"`
	}
)
