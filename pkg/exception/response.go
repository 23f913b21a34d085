package exception

import "github.com/yanun0323/errors"

var (
	ErrMalformedPayload = errors.New("response: malformed payload")
	ErrNotAnObject      = errors.New("response: frame is not a json object")
	ErrFieldMissing     = errors.New("response: field missing")
)
