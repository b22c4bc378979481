package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultOTPStep is the width of one recovery-code time step.
	DefaultOTPStep = 120 * time.Second
	// DefaultOTPSkew is how many adjacent steps are accepted on
	// verification, to tolerate clock drift between issue and confirm.
	DefaultOTPSkew = 1

	otpDigits = 6
)

// ErrInvalidOTPSecret is returned when the shared secret is not valid base32.
var ErrInvalidOTPSecret = errors.New("invalid otp secret")

// OTPIssuer derives short-lived numeric recovery codes from a shared
// base32-encoded secret and the current time step (RFC 6238, HMAC-SHA1,
// 6 digits). It holds no per-code state: the same code is reproducible
// for anyone holding the secret within the same step, and codes are not
// invalidated after use.
type OTPIssuer struct {
	secret []byte
	step   time.Duration
	skew   int
	now    func() time.Time
}

// NewOTPIssuer constructs an OTPIssuer from a base32 secret. Non-positive
// step and negative skew fall back to the defaults.
func NewOTPIssuer(secret string, step time.Duration, skew int) (*OTPIssuer, error) {
	normalized := strings.ToUpper(strings.TrimSpace(secret))
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(normalized, "="))
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidOTPSecret
	}
	if step <= 0 {
		step = DefaultOTPStep
	}
	if skew < 0 {
		skew = DefaultOTPSkew
	}
	return &OTPIssuer{
		secret: key,
		step:   step,
		skew:   skew,
		now:    time.Now,
	}, nil
}

// Issue returns the 6-digit code for the current time step.
func (o *OTPIssuer) Issue() string {
	return o.code(o.counter(o.now()))
}

// Verify reports whether code matches the current time step or one of the
// skew adjacent steps on either side. Comparison is constant-time.
func (o *OTPIssuer) Verify(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != otpDigits {
		return false
	}
	current := o.counter(o.now())
	for offset := -int64(o.skew); offset <= int64(o.skew); offset++ {
		counter := current + offset
		if counter < 0 {
			continue
		}
		if hmac.Equal([]byte(o.code(counter)), []byte(code)) {
			return true
		}
	}
	return false
}

func (o *OTPIssuer) counter(t time.Time) int64 {
	return t.Unix() / int64(o.step/time.Second)
}

// code computes the HOTP value for a counter per RFC 4226.
func (o *OTPIssuer) code(counter int64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(counter))

	mac := hmac.New(sha1.New, o.secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", value%1000000)
}
