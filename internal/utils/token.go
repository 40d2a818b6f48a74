package utils

import (
	"github.com/google/uuid"
)

// GenerateToken returns an unguessable single-use token for invitation and
// password reset links. uuid v4 draws its bits from crypto/rand.
func GenerateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
