package domain

import "errors"

// Business-rule rejections. Login failures deliberately collapse "no such
// email" and "wrong password" into ErrInvalidCredentials so responses cannot
// be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrAccountSuspended = errors.New("account suspended")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrAlreadyActivated = errors.New("account already activated")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidLanguage = errors.New("invalid language")
var ErrInvalidAccessUpdate = errors.New("invalid status or role")
var ErrTooManyAttempts = errors.New("too many login attempts")
var ErrForbidden = errors.New("access forbidden")
