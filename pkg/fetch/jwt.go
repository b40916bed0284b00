package fetch

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

const tokenLifetime = 2 * time.Minute

// JWTAuth signs a short-lived ES256 JWT per request, as required by Coinbase
// CDP API keys. The token's uri claim binds it to one method and path.
type JWTAuth struct {
	keyName string
	key     *ecdsa.PrivateKey
	host    string
	now     func() time.Time
}

// NewJWTAuth parses the PEM-encoded EC private key and returns a ready
// authenticator.
func NewJWTAuth(keyName, keyPEM, host string) (*JWTAuth, error) {
	key, err := parseECKey([]byte(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("parsing API key secret: %w", err)
	}
	return &JWTAuth{keyName: keyName, key: key, host: host, now: time.Now}, nil
}

func (a *JWTAuth) Headers(method, path string) (http.Header, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.ES256, Key: a.key},
		(&jose.SignerOptions{}).
			WithType("JWT").
			WithHeader("kid", a.keyName).
			WithHeader("nonce", hex.EncodeToString(nonce)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating signer: %w", err)
	}

	now := a.now()
	claims := jwt.Claims{
		Subject:   a.keyName,
		Issuer:    "cdp",
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	uri := map[string]interface{}{
		"uri": fmt.Sprintf("%s %s%s", method, a.host, path),
	}

	token, err := jwt.Signed(signer).Claims(claims).Claims(uri).CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h, nil
}

func parseECKey(pemBytes []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an EC private key")
	}
	return key, nil
}
