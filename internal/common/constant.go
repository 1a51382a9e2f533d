package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on authenticated requests.
	AuthorizationHeaderName = "Authorization"

	// SessionCookieName is the cookie the server sets on signup and login.
	SessionCookieName = "airpass_session"

	// UserKeyPrefix prefixes a user id to form the userKey of a signed-in user.
	UserKeyPrefix = "user-"
)
