package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner mints and verifies download tokens of the form
// base64url(exportID|expiry|path) + "." + base64url(hmac-sha256).
// The token is the sole credential for a download, so the download
// route needs no session.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner builds a signer. ttl bounds token validity.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token for the export file and its expiry.
func (s *SignedURLSigner) Generate(exportID, relPath string) (string, time.Time, error) {
	if exportID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("exportID and relPath required")
	}
	if strings.Contains(exportID, "|") || strings.Contains(relPath, "|") {
		return "", time.Time{}, fmt.Errorf("exportID and relPath must not contain %q", "|")
	}

	expiresAt := time.Now().Add(s.ttl).UTC()
	payload := fmt.Sprintf("%s|%d|%s", exportID, expiresAt.Unix(), relPath)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	token := encoded + "." + s.sign(encoded)
	return token, expiresAt, nil
}

// Parse verifies the token signature and expiry and returns its parts.
// allowExpired skips only the expiry check, never the signature.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(sig)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed token payload")
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 {
		return "", "", time.Time{}, fmt.Errorf("malformed token payload")
	}
	unix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed token expiry")
	}

	expiresAt = time.Unix(unix, 0).UTC()
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}
	return parts[0], parts[2], expiresAt, nil
}

func (s *SignedURLSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
