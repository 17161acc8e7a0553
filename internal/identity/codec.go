// Package identity encodes raw customer identities into opaque tokens that
// sibling services pass to each other instead of sharing a session.
//
// A token is a reversible encoding, not a credential. It carries no
// signature and no expiry, so anyone holding it can present it again.
package identity

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iho/greenledger/internal/domain"
)

// MaxIdentityLength bounds the decoded raw identity in bytes.
const MaxIdentityLength = 128

const forbiddenSeparators = ":|"

// Codec converts between raw identities and tokens.
type Codec struct {
	enc *base64.Encoding
}

// NewCodec returns a codec using padded standard base64.
func NewCodec() *Codec {
	return &Codec{enc: base64.StdEncoding.Strict()}
}

// Encode returns the token for raw.
func (c *Codec) Encode(raw string) (string, error) {
	if err := validateRaw(raw); err != nil {
		return "", err
	}
	return c.enc.EncodeToString([]byte(raw)), nil
}

// Decode recovers the raw identity carried by token.
func (c *Codec) Decode(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", domain.ErrMalformedToken)
	}
	if c.enc.DecodedLen(len(token)) > MaxIdentityLength+2 {
		return "", fmt.Errorf("%w: token too long", domain.ErrMalformedToken)
	}

	raw, err := c.enc.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}

	if err := validateRaw(string(raw)); err != nil {
		return "", err
	}
	return string(raw), nil
}

func validateRaw(raw string) error {
	switch {
	case raw == "":
		return fmt.Errorf("%w: empty identity", domain.ErrMalformedToken)
	case len(raw) > MaxIdentityLength:
		return fmt.Errorf("%w: identity exceeds %d bytes", domain.ErrMalformedToken, MaxIdentityLength)
	case !utf8.ValidString(raw):
		return fmt.Errorf("%w: identity is not valid UTF-8", domain.ErrMalformedToken)
	case strings.ContainsAny(raw, forbiddenSeparators):
		return fmt.Errorf("%w: unexpected separator", domain.ErrMalformedToken)
	}
	for _, r := range raw {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: unexpected whitespace or control character", domain.ErrMalformedToken)
		}
	}
	return nil
}
