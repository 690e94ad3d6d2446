package httpkit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestSignIsDeterministic(t *testing.T) {
	sig1 := Sign("c2VjcmV0", 1700000000, "get", "/book?token_id=123", nil)
	sig2 := Sign("c2VjcmV0", 1700000000, "get", "/book?token_id=123", nil)
	if sig1 != sig2 {
		t.Fatalf("signatures differ for identical input: %q vs %q", sig1, sig2)
	}
}

func TestSignMatchesRawHMAC(t *testing.T) {
	secret := "c2VjcmV0" // "secret" base64-encoded
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}

	message := "1700000000" + "GET" + "/book"
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	want := strings.NewReplacer("+", "-", "/", "_").Replace(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	got := Sign(secret, 1700000000, "get", "/book", nil)
	if got != want {
		t.Fatalf("Sign() = %q, want %q", got, want)
	}
}

func TestSignMethodIsUppercased(t *testing.T) {
	lower := Sign("c2VjcmV0", 1700000000, "post", "/order", []byte(`{}`))
	upper := Sign("c2VjcmV0", 1700000000, "POST", "/order", []byte(`{}`))
	if lower != upper {
		t.Fatal("expected method casing to be normalized before signing")
	}
}

func TestSignIncludesBody(t *testing.T) {
	withoutBody := Sign("c2VjcmV0", 1700000000, "POST", "/order", nil)
	withBody := Sign("c2VjcmV0", 1700000000, "POST", "/order", []byte(`{"a":1}`))
	if withoutBody == withBody {
		t.Fatal("expected body to affect the signature")
	}
}

func TestDecodeBase64URLTolerantHandlesURLSafeAlphabet(t *testing.T) {
	// "secret+data" base64url-encoded uses '-'/'_' where standard would use '+'/'/'.
	raw := []byte("secret+data/padding??")
	stdEncoded := base64.StdEncoding.EncodeToString(raw)
	urlEncoded := base64.URLEncoding.EncodeToString(raw)

	sigStd := Sign(stdEncoded, 1, "GET", "/x", nil)
	sigURL := Sign(urlEncoded, 1, "GET", "/x", nil)
	if sigStd != sigURL {
		t.Fatalf("expected tolerant decode to normalize url-safe alphabet: %q vs %q", sigStd, sigURL)
	}
}

func TestApplyHeadersSetsAllFields(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://clob.example/book", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.URL.RawQuery = url.Values{"token_id": {"123"}}.Encode()

	creds := Credentials{Address: "0xabc", APIKey: "key", Secret: "c2VjcmV0", Passphrase: "pass"}
	now := time.Unix(1700000000, 0)

	ApplyHeaders(req, creds, nil, now)

	if got := req.Header.Get("POLY_ADDRESS"); got != "0xabc" {
		t.Fatalf("POLY_ADDRESS = %q", got)
	}
	if got := req.Header.Get("POLY_API_KEY"); got != "key" {
		t.Fatalf("POLY_API_KEY = %q", got)
	}
	if got := req.Header.Get("POLY_PASSPHRASE"); got != "pass" {
		t.Fatalf("POLY_PASSPHRASE = %q", got)
	}
	if got := req.Header.Get("POLY_TIMESTAMP"); got != "1700000000" {
		t.Fatalf("POLY_TIMESTAMP = %q", got)
	}
	if req.Header.Get("POLY_SIGNATURE") == "" {
		t.Fatal("expected POLY_SIGNATURE to be set")
	}
}
