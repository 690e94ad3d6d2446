/**
 * @description
 * HMAC request signer shared by every client that talks to an authenticated
 * Polymarket surface. Generalizes the teacher's CLOB builder-signature helper
 * (formerly duplicated inline in polymarket/clob/client.go) into a standalone,
 * reusable signer matching the exact algorithm:
 *
 *   message   = timestamp_sec + method + request_path_with_query + body
 *   signature = base64url(HMAC_SHA256(decode_base64url_tolerant(secret), message))
 *
 * decode_base64url_tolerant replaces '-'/'_' with '+'/'/' before decoding and
 * strips non-base64 characters. The signature itself is produced the other
 * way around: standard base64-encode the MAC, then remap '+'/'/' to '-'/'_',
 * padding preserved.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha256, encoding/base64
 */

package httpkit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Credentials bundles the opaque signing material configured per §6.
type Credentials struct {
	Address    string
	APIKey     string
	Secret     string
	Passphrase string
}

// decodeBase64URLTolerant implements the spec's tolerant base64url decode:
// '-'/'_' -> '+'/'/' before decoding, and any non-base64 character stripped.
func decodeBase64URLTolerant(secret string) []byte {
	replaced := strings.NewReplacer("-", "+", "_", "/").Replace(secret)

	var sb strings.Builder
	for _, r := range replaced {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '/' || r == '=' {
			sb.WriteRune(r)
		}
	}
	cleaned := sb.String()

	if decoded, err := base64.StdEncoding.DecodeString(cleaned); err == nil {
		return decoded
	}
	// The secret may arrive without (or with wrong) '=' padding, which the
	// cleaning pass keeps as-is; retry with raw (unpadded) decoding before
	// giving up and treating it as raw bytes.
	if decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "=")); err == nil {
		return decoded
	}
	return []byte(secret)
}

// Sign computes the §6 signature for (timestampSec, method, requestPathWithQuery, body)
// and returns it base64url-encoded, padding preserved: standard base64 with
// '+'/'/' remapped to '-'/'_', matching the teacher's builder-signature helper.
func Sign(secret string, timestampSec int64, method, requestPathWithQuery string, body []byte) string {
	key := decodeBase64URLTolerant(secret)

	message := strconv.FormatInt(timestampSec, 10) + strings.ToUpper(method) + requestPathWithQuery
	if len(body) > 0 {
		message += string(body)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	sig = strings.NewReplacer("+", "-", "/", "_").Replace(sig)
	return sig
}

// ApplyHeaders signs req (whose Body must already be set via body) and sets
// the POLY_* headers per §6.
func ApplyHeaders(req *http.Request, creds Credentials, body []byte, now time.Time) {
	requestPath := req.URL.Path
	if req.URL.RawQuery != "" {
		requestPath += "?" + req.URL.RawQuery
	}

	timestamp := now.Unix()
	sig := Sign(creds.Secret, timestamp, req.Method, requestPath, body)

	req.Header.Set("POLY_ADDRESS", creds.Address)
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", strconv.FormatInt(timestamp, 10))
	req.Header.Set("POLY_API_KEY", creds.APIKey)
	req.Header.Set("POLY_PASSPHRASE", creds.Passphrase)
}
