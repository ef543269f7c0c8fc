package common

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCountsCharacters(t *testing.T) {
	long := strings.Repeat("x", 254) + "ñandú"
	got := Truncate(long, 255)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 255, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "ñ"))

	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "hé", Truncate("héllo", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "🙂🙂", Truncate("🙂🙂🙂", 2))
}
