package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrNoIdentity           = errors.New("no identity is signed in")
	ErrMissingEmail         = errors.New("signed-in identity has no email")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrIllegalTransition    = errors.New("illegal transition of settlement status")
)
