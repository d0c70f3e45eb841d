package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateQuizCode(t *testing.T) {
	format := regexp.MustCompile(`^[A-Z0-9]+$`)

	for _, length := range []int{4, 6, 8} {
		code := GenerateQuizCode(length)
		assert.Len(t, code, length)
		assert.Regexp(t, format, code)
	}

	// 码空间足够大，小样本内不应出现重复
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		seen[GenerateQuizCode(6)] = true
	}
	assert.Greater(t, len(seen), 990)
}
