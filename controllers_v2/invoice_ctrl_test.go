package v2controllers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropsFromXRPString(t *testing.T) {
	drops, err := dropsFromXRPString("1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1_000_000), drops)

	drops, err = dropsFromXRPString("0.000001")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), drops)

	drops, err = dropsFromXRPString("12.5")
	assert.NoError(t, err)
	assert.Equal(t, int64(12_500_000), drops)
}

func TestDropsFromXRPStringRejectsSubDropPrecision(t *testing.T) {
	_, err := dropsFromXRPString("0.0000001")
	assert.Error(t, err)
}

func TestDropsFromXRPStringRejectsNegative(t *testing.T) {
	_, err := dropsFromXRPString("-1")
	assert.Error(t, err)
}

func TestDropsFromXRPStringRejectsGarbage(t *testing.T) {
	_, err := dropsFromXRPString("one xrp")
	assert.Error(t, err)
}

func TestDepositQRCode(t *testing.T) {
	qr, err := depositQRCode("rDepositAccount", "abc123", 1_000_000)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
}
