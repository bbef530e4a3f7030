package promotion

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCode         = errors.New("invalid promotion code format")
	ErrInvalidKind         = errors.New("invalid promotion kind")
	ErrInvalidPercentValue = errors.New("percentage value must be between 0 and 100")
	ErrInvalidFixedValue   = errors.New("fixed discount value cannot be negative")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}
