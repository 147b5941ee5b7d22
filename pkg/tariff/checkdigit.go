package tariff

import (
	"errors"
	"strconv"
)

var ErrNonNumericCode = errors.New("tariff: code must contain only digits")

// Position weights for the modulo-10 weighted sum. Even positions count once,
// odd positions five times.
var checkDigitWeights = [2]int{1, 5}

// CalculateCheckDigit returns the modulo-10 check digit for a numeric tariff
// code: each digit is multiplied by its position weight, and the check digit
// is the ten's complement of the sum modulo 10.
func CalculateCheckDigit(code string) (string, error) {
	if code == "" {
		return "", ErrNonNumericCode
	}
	sum := 0
	// ASCII digits only: unicode.IsDigit would admit other scripts' digits,
	// for which r-'0' is meaningless and byte positions drift.
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return "", ErrNonNumericCode
		}
		sum += int(c-'0') * checkDigitWeights[i%2]
	}
	return strconv.Itoa((10 - sum%10) % 10), nil
}

// VerifyCheckDigit reports whether the trailing digit of codeWithCheck is the
// valid check digit for the preceding digits.
func VerifyCheckDigit(codeWithCheck string) (bool, error) {
	if len(codeWithCheck) < 2 {
		return false, ErrNonNumericCode
	}
	want, err := CalculateCheckDigit(codeWithCheck[:len(codeWithCheck)-1])
	if err != nil {
		return false, err
	}
	return want == codeWithCheck[len(codeWithCheck)-1:], nil
}
