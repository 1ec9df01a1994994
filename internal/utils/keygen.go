package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// wat is West Africa Time, the timezone VTU providers expect in request ids.
var wat = time.FixedZone("WAT", 1*3600)

// randomHex returns n random bytes as hex.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRequestID generates a provider request id: YYYYMMDDHHmm in WAT followed by 12 hex chars.
// Example: 202510211030a1b2c3d4e5f6
func GenerateRequestID(now time.Time) (string, error) {
	suffix, err := randomHex(6)
	if err != nil {
		return "", err
	}
	return now.In(wat).Format("200601021504") + suffix, nil
}

// GenerateDepositReference generates a bank deposit narration reference: TRUST-xxxxxxxx,
// where the digits are the last eight of the unix millisecond timestamp.
func GenerateDepositReference(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "TRUST-" + ms
}

// GenerateOrderReference generates an internal order reference: ORD-<16 hex>.
func GenerateOrderReference() (string, error) {
	suffix, err := randomHex(8)
	if err != nil {
		return "", err
	}
	return "ORD-" + suffix, nil
}
