package auth

import (
	"net/http"
	"strings"

	"github.com/iurnickita/grabmarket/internal/token"
)

// Auth - проверка токена пользователя. Регистрация и вход живут
// во внешнем сервисе, здесь только middleware
type Auth interface {
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

const (
	UserCodeKey     = "userCode"
	AuthTokenKey    = "authToken"
	cookieUserToken = "grabmarketUserToken"
)

type auth struct {
	secret string
}

func NewAuth(secret string) Auth {
	return &auth{secret: secret}
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userCode, userToken, err := a.getUserCode(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		r.Header.Set(UserCodeKey, userCode)
		r.Header.Set(AuthTokenKey, userToken)

		h.ServeHTTP(w, r)
	}
}

func (a *auth) getUserCode(r *http.Request) (string, string, error) {
	// токен из заголовка либо из куки
	userToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if userToken == "" {
		tokenCookie, err := r.Cookie(cookieUserToken)
		if err != nil {
			return "", "", err
		}
		userToken = tokenCookie.Value
	}

	userCode, err := token.GetUserCode(userToken, a.secret)
	if err != nil {
		return "", "", err
	}
	return userCode, userToken, nil
}
