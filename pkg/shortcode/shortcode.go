package shortcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphabet 去掉易混淆字符（0/O、1/I/L）的大写字母与数字
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ReferralLength 系统分配的推荐码长度
const ReferralLength = 8

// Generator 短码生成器
type Generator struct {
	rand io.Reader
}

// New 使用 crypto/rand 的生成器
func New() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewWithReader 指定随机源（测试使用）
func NewWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate 生成指定长度的短码
func (g *Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("短码长度必须大于 0: %d", length)
	}

	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("生成短码失败: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize 统一为大写并去除首尾空白
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid 校验短码字符集与长度（用户自定义推荐码 4-16 位，A-Z0-9）
func Valid(code string) bool {
	if len(code) < 4 || len(code) > 16 {
		return false
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
