// Package stringutil provides some string based helpers.
package stringutil

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

func SecureRandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-"

	ret := make([]byte, n)

	for currentChar := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return ""
		}

		ret[currentChar] = letters[num.Int64()]
	}

	return string(ret)
}

// StringToIntOrZero handles converting a string to a integer that is within 32bit bounds.
// Returns 0 on a out of bounds value.
func StringToIntOrZero(desired string) int {
	parsed, err := strconv.ParseInt(desired, 10, 32)
	if err != nil {
		return 0
	}

	return int(parsed)
}
