package gateway

import (
	"context"
	"crypto/md5" //nolint:gosec // the gateway protocol mandates MD5 checksums
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"runnerhub/config"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

// transactionApproved is the TRANSACTION_STATUS the gateway sends for a paid order.
const transactionApproved = "1"

var errNotConfigured = errors.New("payment gateway credentials are not configured")

// PayGate signs hosted payment page requests and checks return checksums.
type PayGate struct {
	cfg config.GatewayConfig
	now func() time.Time
}

func NewPayGate(cfg config.GatewayConfig) *PayGate {
	return &PayGate{cfg: cfg, now: time.Now}
}

// Initiate builds the signed form the client posts to the process URL. The
// checksum covers the field values in the order they are listed.
func (g *PayGate) Initiate(_ context.Context, req ports.GatewayInitiateRequest) (*ports.GatewayInitiateResponse, error) {
	if g.cfg.MerchantID == "" || g.cfg.Secret == "" {
		return nil, errNotConfigured
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = g.cfg.ReturnURL
	}

	fields := []field{
		{"PAYGATE_ID", g.cfg.MerchantID},
		{"REFERENCE", req.Reference},
		{"AMOUNT", toCents(req.Amount)},
		{"CURRENCY", g.cfg.Currency},
		{"RETURN_URL", returnURL},
		{"TRANSACTION_DATE", g.now().UTC().Format(time.DateTime)},
		{"LOCALE", g.cfg.Locale},
		{"COUNTRY", g.cfg.Country},
		{"EMAIL", req.Email},
	}

	values := make([]string, 0, len(fields))
	out := make(map[string]string, len(fields)+1)
	for _, f := range fields {
		values = append(values, f.value)
		out[f.name] = f.value
	}
	out["CHECKSUM"] = g.checksum(values...)

	return &ports.GatewayInitiateResponse{ProcessURL: g.cfg.ProcessURL, Fields: out}, nil
}

// Verify checks the return checksum. A signed callback is successful only
// for the approved status; any other signed status is failed.
func (g *PayGate) Verify(_ context.Context, cb ports.GatewayCallback) (domain.PaymentStatus, error) {
	if g.cfg.MerchantID == "" || g.cfg.Secret == "" {
		return "", errNotConfigured
	}

	expected := g.checksum(g.cfg.MerchantID, cb.PayRequestID, cb.TransactionStatus, cb.Reference)
	got := strings.ToLower(strings.TrimSpace(cb.Checksum))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return "", ports.ErrChecksumMismatch
	}
	if cb.TransactionStatus != transactionApproved {
		return domain.PaymentStatusFailed, nil
	}
	return domain.PaymentStatusSuccessful, nil
}

type field struct {
	name  string
	value string
}

func (g *PayGate) checksum(values ...string) string {
	sum := md5.Sum([]byte(strings.Join(values, "") + g.cfg.Secret)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func toCents(amount decimal.Decimal) string {
	return amount.Shift(2).Round(0).StringFixed(0)
}
