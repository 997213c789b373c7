package tracking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Signer signs and verifies tracking tokens for public callback URLs.
type Signer struct {
	signingKey []byte
	baseURL    string
}

// NewSigner creates a signer. baseURL is the externally reachable root
// the tracking routes are mounted under, without a trailing slash.
func NewSigner(signingKey, baseURL string) *Signer {
	return &Signer{signingKey: []byte(signingKey), baseURL: baseURL}
}

// sign creates a truncated HMAC signature over the token.
func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Verify checks a signature against the encoded token and returns the
// decoded tracking token.
func (s *Signer) Verify(encoded, signature string) (string, bool) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	token := string(raw)
	expected := s.sign(token)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", false
	}
	return token, true
}

// OpenURL returns the signed tracking-pixel URL for a token.
func (s *Signer) OpenURL(token string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(token))
	return fmt.Sprintf("%s/track/open/%s/%s", s.baseURL, encoded, s.sign(token))
}

// ClickURL returns the signed click-redirect URL for a token.
func (s *Signer) ClickURL(token string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(token))
	return fmt.Sprintf("%s/track/click/%s/%s", s.baseURL, encoded, s.sign(token))
}
