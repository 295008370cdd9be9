package member

import "errors"

var (
	ErrNotFound        = errors.New("member not found")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountDisabled = errors.New("account disabled or banned")
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrIdentityTaken   = errors.New("identity already in use")
	ErrLoginTaken      = errors.New("login already in use")
	ErrEmailTaken      = errors.New("email already in use")
)
