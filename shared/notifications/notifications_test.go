package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, "PEPE\\-2\\.0", EscapeMarkdownV2("PEPE-2.0"))
	assert.Equal(t, "a\\*b\\_c", EscapeMarkdownV2("a*b_c"))
	assert.Equal(t, "plain", EscapeMarkdownV2("plain"))
	assert.Equal(t, "", EscapeMarkdownV2(""))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.5000", formatPrice(1.5))
	assert.Equal(t, "0.0100", formatPrice(0.01))
	assert.Equal(t, "0.00012345", formatPrice(0.00012345))
}

func TestNewTelegram_RejectsMissingConfig(t *testing.T) {
	_, err := NewTelegram("", 123)
	assert.Error(t, err)

	_, err = NewTelegram("token", 0)
	assert.Error(t, err)
}

func TestDexScreenerLink(t *testing.T) {
	assert.Equal(t, "https://dexscreener.com/base/0xabc", dexScreenerLink("0xabc"))
}
