package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxSignatureAge is the accepted clock skew for signed requests.
const maxSignatureAge = 5 * time.Minute

// VerifyRequest checks the Slack v0 request signature over the raw body.
// Requests older (or newer) than five minutes are rejected to blunt replay.
func VerifyRequest(signingSecret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request timestamp")
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return fmt.Errorf("request timestamp out of range")
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
