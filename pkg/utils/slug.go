package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// Slugify 把名称转为URL安全的slug: 小写, 非字母数字折叠为单个连字符
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // 抑制前导连字符

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if r > unicode.MaxASCII {
				continue
			}
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

// RandomToken 生成十六进制随机令牌, n 为字节数
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
