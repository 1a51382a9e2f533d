package common

import "strings"

// UserKeyFor returns the userKey that identifies a signed-in user across
// profiles, health profiles and history.
func UserKeyFor(userID string) string {
	return UserKeyPrefix + userID
}

// UserIDFromKey extracts the user id from a userKey produced by UserKeyFor.
// Anonymous keys yield ok == false.
func UserIDFromKey(userKey string) (string, bool) {
	id, ok := strings.CutPrefix(userKey, UserKeyPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
