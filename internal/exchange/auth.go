package exchange

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yanun0323/errors"
)

// authToken builds the bearer credential for signed endpoints: an
// HS512 token over {access_key, nonce} plus, when the request carries
// parameters, the SHA512 hash of the canonical query string.
func (c *Client) authToken(query string) (string, error) {
	claims := jwt.MapClaims{
		"access_key": c.accessKey,
		"nonce":      uuid.NewString(),
	}
	if query != "" {
		hash := sha512.Sum512([]byte(query))
		claims["query_hash"] = hex.EncodeToString(hash[:])
		claims["query_hash_alg"] = "SHA512"
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(c.secretKey))
	if err != nil {
		return "", errors.Wrap(err, "sign auth token")
	}

	return "Bearer " + signed, nil
}
