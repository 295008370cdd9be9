package member

import (
	"crypto/sha512"
	"encoding/hex"
	"regexp"
)

var (
	identityPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9 _-]+$`)
	emailPattern    = regexp.MustCompile(`^\w+([-+.']\w+)*@\w+([-.]\w+)*\.\w+([-.]\w+)*$`)
)

// ValidIdentity accepts display names of at least three characters that
// start with a letter and stick to letters, digits, spaces, underscores
// and dashes.
func ValidIdentity(identity string) bool {
	return len(identity) >= 3 && identityPattern.MatchString(identity)
}

// ValidEmail checks address syntax only; deliverability is the mailer's
// problem.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PasswordDigest is the credential digest exchanged with the member store:
// the hex sha512 of the clear password.
func PasswordDigest(password string) string {
	sum := sha512.Sum512([]byte(password))
	return hex.EncodeToString(sum[:])
}
