package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"post-board/pkg/core/user/model"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9]{4,10}$`)

// 密码允许的特殊字符
const passwordSymbols = "@$!%*?&"

const (
	msgUsername = "username must be 4-10 characters of lowercase letters and digits"
	msgPassword = "password must be 8-15 characters and contain upper and lower case letters, a digit and one of " + passwordSymbols
	msgRole     = "role must be USER or ADMIN"
)

func validateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// validatePasswordStrength 8-15位，大小写字母、数字、特殊字符各至少一个，且只能由这些字符组成
func validatePasswordStrength(password string) bool {
	if n := utf8.RuneCountInString(password); n < 8 || n > 15 {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, c):
			hasSymbol = true
		default:
			return false
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// normalizeRole 空值默认为 USER
func normalizeRole(role string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case "", model.RoleUser:
		return model.RoleUser, true
	case model.RoleAdmin:
		return model.RoleAdmin, true
	default:
		return "", false
	}
}

func validateSignup(in SignupInput) (string, map[string]string) {
	fields := map[string]string{}
	if !validateUsername(in.Username) {
		fields["username"] = msgUsername
	}
	if !validatePasswordStrength(in.Password) {
		fields["password"] = msgPassword
	}
	role, ok := normalizeRole(in.Role)
	if !ok {
		fields["role"] = msgRole
	}
	if len(fields) > 0 {
		return "", fields
	}
	return role, nil
}
