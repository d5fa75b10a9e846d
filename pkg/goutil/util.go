package goutil

import (
	"golang.org/x/crypto/bcrypt"
)

func ContainsStr(arr []string, str string) bool {
	for _, v := range arr {
		if v == str {
			return true
		}
	}
	return false
}

func BCrypt(s string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CompareBCrypt(hash, input string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(input))
}
