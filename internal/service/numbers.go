package service

import (
	"fmt"
	"math/rand"
)

// maxNumberAttempts bounds how many times a generated account or card number
// is retried after a uniqueness conflict at the store. Collisions on 10- and
// 16-digit numbers are rare enough that hitting the bound indicates a bug.
const maxNumberAttempts = 5

// randomNumber returns a uniformly random number with exactly the given
// count of digits. Uniqueness is not guaranteed here; the store's unique
// constraint is the arbiter, and callers retry on conflict.
func randomNumber(digits int) int64 {
	min := int64(1)
	for i := 1; i < digits; i++ {
		min *= 10
	}
	return min + rand.Int63n(9*min)
}

// randomCVV returns a zero-padded 3-digit card verification value.
func randomCVV() string {
	return fmt.Sprintf("%03d", rand.Intn(1000))
}
