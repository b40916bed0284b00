package fetch

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

// HMACAuth signs requests with the legacy symmetric scheme: a hex SHA-256
// HMAC over timestamp + method + path (+ body, empty for GET).
type HMACAuth struct {
	key    string
	secret []byte
	now    func() time.Time
}

func NewHMACAuth(key, secret string) *HMACAuth {
	return &HMACAuth{key: key, secret: []byte(secret), now: time.Now}
}

func (a *HMACAuth) Headers(method, path string) (http.Header, error) {
	timestamp := strconv.FormatInt(a.now().Unix(), 10)

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(timestamp + method + path))
	signature := hex.EncodeToString(mac.Sum(nil))

	h := http.Header{}
	h.Set("CB-ACCESS-KEY", a.key)
	h.Set("CB-ACCESS-SIGN", signature)
	h.Set("CB-ACCESS-TIMESTAMP", timestamp)
	return h, nil
}
