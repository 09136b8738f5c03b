package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrBadToken is returned for action tokens that are malformed, signed with
// another key or issued for a different action.
var ErrBadToken = errors.New("web: bad action token")

// Action identifies what a signed token lets the browser do.
type Action struct {
	Name string `msgpack:"a"`
	ID   int64  `msgpack:"i,omitempty"`
	// Date is a day as YYYY-MM-DD for day clicks.
	Date string `msgpack:"d,omitempty"`
}

// Tokens signs actions so the page can only ask for gestures it was
// rendered with. Payloads are visible, not secret.
type Tokens struct {
	key []byte
}

// NewTokens derives a signing key from secret. An empty secret gets a
// random key, so tokens do not outlive the process.
func NewTokens(secret []byte) (*Tokens, error) {
	key := secret
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token key: %w", err)
		}
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Tokens{key: key}, nil
}

// Encode returns base64url(msgpack).base64url(hmac).
func (t *Tokens) Encode(a Action) (string, error) {
	packed, err := msgpack.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode action: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(packed) + "." + base64.RawURLEncoding.EncodeToString(t.sum(packed)), nil
}

// Decode verifies s and checks that it was issued for action name.
func (t *Tokens) Decode(name, s string) (Action, error) {
	data, sig, ok := strings.Cut(s, ".")
	if !ok {
		return Action{}, fmt.Errorf("%w: missing signature", ErrBadToken)
	}
	packed, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if !hmac.Equal(mac, t.sum(packed)) {
		return Action{}, fmt.Errorf("%w: signature mismatch", ErrBadToken)
	}
	var a Action
	if err := msgpack.Unmarshal(packed, &a); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if a.Name != name {
		return Action{}, fmt.Errorf("%w: issued for %q", ErrBadToken, a.Name)
	}
	return a, nil
}

func (t *Tokens) sum(data []byte) []byte {
	mac := hmac.New(sha256.New, t.key)
	mac.Write(data)
	return mac.Sum(nil)[:16]
}
