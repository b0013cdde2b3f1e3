// Package token serializes session tokens to and from their encrypted wire
// form. The codec is pure: it holds only the symmetric key, performs no I/O,
// and is safe for concurrent use from any number of request goroutines.
package token

import (
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"

	"github.com/chatgrid/chat-service/internal/core/domain"
)

// KeySize is the required symmetric key length: A128CBC-HS256 under direct
// encryption takes a 256-bit key (128 bits AES, 128 bits HMAC).
const KeySize = 32

// Decode failure modes. Expiry is deliberately not one of them: the codec
// never evaluates the validity window, so callers can tell a corrupt token
// from a stale one.
var (
	ErrTokenMalformed      = errors.New("token: malformed")
	ErrTokenAuthentication = errors.New("token: authentication failed")
	ErrKeySize             = fmt.Errorf("token: key must be exactly %d bytes", KeySize)
)

type tokenClaims struct {
	jwt.Claims
	Authorities []string `json:"authorities"`
}

// Codec encrypts and decrypts tokens as compact JWE strings using a single
// symmetric key with alg=dir, enc=A128CBC-HS256.
type Codec struct {
	key []byte
}

// NewCodec validates the key once at construction. The key is supplied by
// configuration at process start and must never be reassigned afterwards.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Codec{key: k}, nil
}

// Encode serializes t into an authenticated-encrypted compact string. The
// protected header carries the algorithm identifiers and the token ID as the
// key ID, so the blob is self-describing.
func (c *Codec) Encode(t domain.Token) (string, error) {
	enc, err := jose.NewEncrypter(
		jose.A128CBC_HS256,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		(&jose.EncrypterOptions{}).
			WithType("JWT").
			WithHeader("kid", t.ID.String()),
	)
	if err != nil {
		return "", fmt.Errorf("token: build encrypter: %w", err)
	}

	claims := tokenClaims{
		Claims: jwt.Claims{
			ID:       t.ID.String(),
			Subject:  t.Subject,
			IssuedAt: jwt.NewNumericDate(t.IssuedAt),
			Expiry:   jwt.NewNumericDate(t.ExpiresAt),
		},
		Authorities: t.Authorities,
	}

	raw, err := jwt.Encrypted(enc).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("token: encrypt: %w", err)
	}
	return raw, nil
}

// Decode parses and decrypts raw back into a Token. It fails with
// ErrTokenMalformed when the compact serialization cannot be parsed and with
// ErrTokenAuthentication when decryption or the integrity check fails; a
// different key or any flipped bit lands in the latter bucket.
func (c *Codec) Decode(raw string) (domain.Token, error) {
	parsed, err := jwt.ParseEncrypted(raw,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A128CBC_HS256},
	)
	if err != nil {
		return domain.Token{}, ErrTokenMalformed
	}

	var claims tokenClaims
	if err := parsed.Claims(c.key, &claims); err != nil {
		return domain.Token{}, ErrTokenAuthentication
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return domain.Token{}, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.Expiry == nil {
		return domain.Token{}, ErrTokenMalformed
	}

	return domain.Token{
		ID:          id,
		Subject:     claims.Subject,
		Authorities: claims.Authorities,
		IssuedAt:    claims.IssuedAt.Time().UTC(),
		ExpiresAt:   claims.Expiry.Time().UTC(),
	}, nil
}
