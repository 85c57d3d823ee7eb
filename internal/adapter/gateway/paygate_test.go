package gateway

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"runnerhub/config"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.GatewayConfig {
	return config.GatewayConfig{
		MerchantID: "10011072130",
		Secret:     "secret",
		ProcessURL: "https://secure.paygate.co.za/payweb3/process.trans",
		ReturnURL:  "https://app.example.com/return",
		Currency:   "ZAR",
		Country:    "ZAF",
		Locale:     "en-za",
	}
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func TestPayGate_Initiate(t *testing.T) {
	g := NewPayGate(testConfig())
	g.now = func() time.Time { return time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC) }

	resp, err := g.Initiate(context.Background(), ports.GatewayInitiateRequest{
		Reference: "TASK-abc-1",
		Amount:    decimal.RequireFromString("149.95"),
		Email:     "client@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://secure.paygate.co.za/payweb3/process.trans", resp.ProcessURL)
	assert.Equal(t, "14995", resp.Fields["AMOUNT"])
	assert.Equal(t, "2026-10-16 08:30:00", resp.Fields["TRANSACTION_DATE"])
	assert.Equal(t, "https://app.example.com/return", resp.Fields["RETURN_URL"])

	want := md5hex("10011072130" + "TASK-abc-1" + "14995" + "ZAR" + "https://app.example.com/return" +
		"2026-10-16 08:30:00" + "en-za" + "ZAF" + "client@example.com" + "secret")
	assert.Equal(t, want, resp.Fields["CHECKSUM"])
}

func TestPayGate_Initiate_NotConfigured(t *testing.T) {
	g := NewPayGate(config.GatewayConfig{})

	_, err := g.Initiate(context.Background(), ports.GatewayInitiateRequest{Reference: "r", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestPayGate_Verify(t *testing.T) {
	g := NewPayGate(testConfig())
	ctx := context.Background()
	sign := func(status string) string {
		return md5hex("10011072130" + "PR-9" + status + "TASK-abc-1" + "secret")
	}

	tests := []struct {
		name string
		cb   ports.GatewayCallback
		want domain.PaymentStatus
	}{
		{
			name: "approved",
			cb:   ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-1", TransactionStatus: "1", Checksum: sign("1")},
			want: domain.PaymentStatusSuccessful,
		},
		{
			name: "declined",
			cb:   ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-1", TransactionStatus: "2", Checksum: sign("2")},
			want: domain.PaymentStatusFailed,
		},
		{
			name: "uppercase checksum",
			cb:   ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-1", TransactionStatus: "1", Checksum: "  " + strings.ToUpper(sign("1"))},
			want: domain.PaymentStatusSuccessful,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Verify(ctx, tt.cb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayGate_Verify_ChecksumMismatch(t *testing.T) {
	g := NewPayGate(testConfig())
	signed := md5hex("10011072130" + "PR-9" + "2" + "TASK-abc-1" + "secret")

	tests := []struct {
		name string
		cb   ports.GatewayCallback
	}{
		{"tampered status", ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-1", TransactionStatus: "1", Checksum: signed}},
		{"tampered reference", ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-2", TransactionStatus: "2", Checksum: signed}},
		{"guessed checksum", ports.GatewayCallback{PayRequestID: "PR-9", Reference: "TASK-abc-1", TransactionStatus: "2", Checksum: "00ff"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Verify(context.Background(), tt.cb)
			assert.ErrorIs(t, err, ports.ErrChecksumMismatch)
			assert.Empty(t, got)
		})
	}
}

func TestToCents(t *testing.T) {
	assert.Equal(t, "10000", toCents(decimal.NewFromInt(100)))
	assert.Equal(t, "1", toCents(decimal.RequireFromString("0.005")))
	assert.Equal(t, "12346", toCents(decimal.RequireFromString("123.456")))
}
