package errors

import "strings"

// Known upstream messages that get a friendlier localized override before
// they reach a client. Matching is by substring since the CMS embeds
// identifiers into some of its messages.
var translations = []struct {
	contains string
	message  string
}{
	{"Invalid identifier or password", "이메일 또는 비밀번호가 올바르지 않습니다."},
	{"Email or Username are already taken", "이미 사용 중인 이메일 또는 사용자 이름입니다."},
	{"email must be a valid email", "올바른 이메일 주소를 입력해 주세요."},
	{"password must be at least", "비밀번호가 너무 짧습니다."},
}

// Translate maps known remote error messages to their localized override.
// Unrecognized messages pass through unchanged.
func Translate(message string) string {
	for _, t := range translations {
		if strings.Contains(message, t.contains) {
			return t.message
		}
	}
	return message
}
