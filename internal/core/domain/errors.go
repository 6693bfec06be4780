package domain

import "errors"

var ErrInsufficientBalance = errors.New("insufficient unit balance")
var ErrDuplicatePayment = errors.New("payment reference already credited")
var ErrAlreadyUnlocked = errors.New("contact already unlocked")
var ErrInvalidEntry = errors.New("invalid ledger entry")
var ErrForbidden = errors.New("access forbidden")
var ErrGrantNotFound = errors.New("unlock grant not found")
var ErrIdentityNotFound = errors.New("identity not found")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
