package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	androidMobileUA = "Mozilla/5.0 (Linux; Android 12; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	ipadUA          = "Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"
)

func TestParseUserAgent_Desktop(t *testing.T) {
	info := ParseUserAgent(chromeDesktopUA)
	assert.Equal(t, "desktop", info.DeviceType)
	assert.Equal(t, "Chrome", info.Browser)
	assert.False(t, info.IsBot)
}

func TestParseUserAgent_Mobile(t *testing.T) {
	info := ParseUserAgent(androidMobileUA)
	assert.Equal(t, "mobile", info.DeviceType)
	assert.Contains(t, info.OS, "Android")
}

func TestParseUserAgent_Tablet(t *testing.T) {
	info := ParseUserAgent(ipadUA)
	assert.Equal(t, "tablet", info.DeviceType)
}

func TestParseUserAgent_Empty(t *testing.T) {
	info := ParseUserAgent("")
	assert.Equal(t, "unknown", info.DeviceType)
	assert.Equal(t, "unknown / Unknown / Unknown", info.Summary())
}
