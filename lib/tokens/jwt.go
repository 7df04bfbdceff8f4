package tokens

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fassethub/fassethub.go/db/models"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

type jwtCustomClaims struct {
	ID        int64 `json:"id"`
	IsRefresh bool  `json:"isRefresh"`

	jwt.StandardClaims
}

// Middleware validates the bearer token and stores the authenticated user id
// under the UserID context key. Refresh tokens are rejected here, they are
// only good for the auth endpoint.
func Middleware(secret []byte) echo.MiddlewareFunc {
	badAuth := echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
		"error":   true,
		"code":    1,
		"message": "bad auth",
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return badAuth
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			userId, err := ParseAccessToken(secret, raw)
			if err != nil {
				c.Logger().Error(err)
				return badAuth
			}
			c.Set("UserID", userId)
			c.Set("UserJwtToken", raw)
			return next(c)
		}
	}
}

// GenerateAccessToken : Generate Access Token
func GenerateAccessToken(secret []byte, expiryInSeconds int, u *models.User) (string, error) {
	claims := &jwtCustomClaims{
		ID:        u.ID,
		IsRefresh: false,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(expiryInSeconds) * time.Second).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// GenerateRefreshToken : Generate Refresh Token
func GenerateRefreshToken(secret []byte, expiryInSeconds int, u *models.User) (string, error) {
	claims := &jwtCustomClaims{
		ID:        u.ID,
		IsRefresh: true,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(expiryInSeconds) * time.Second).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

func parseToken(secret []byte, token string) (*jwtCustomClaims, error) {
	claims := &jwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ParseAccessToken returns the user id of a valid access token.
func ParseAccessToken(secret []byte, token string) (int64, error) {
	claims, err := parseToken(secret, token)
	if err != nil {
		return 0, err
	}
	if claims.IsRefresh {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.ID, nil
}

// ParseRefreshToken returns the user id of a valid refresh token.
func ParseRefreshToken(secret []byte, token string) (int64, error) {
	claims, err := parseToken(secret, token)
	if err != nil {
		return 0, err
	}
	if !claims.IsRefresh {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.ID, nil
}
