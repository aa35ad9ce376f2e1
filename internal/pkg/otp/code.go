package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode 生成 digits 位数字验证码，首位不为 0，在取值范围内均匀分布
func GenerateCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid code length %d", digits)
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	high := new(big.Int).Mul(low, big.NewInt(10))
	span := new(big.Int).Sub(high, low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return n.Add(n, low).String(), nil
}
