package report

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signerIssuer = "tariffcore/report"

var ErrEmptySecret = errors.New("report: signing secret must not be empty")

// SignedClaims binds a report's content hash into a JWT so a recipient can
// verify that the report they hold is the one that was issued.
type SignedClaims struct {
	jwt.RegisteredClaims
	ClassificationID string `json:"classification_id"`
	ReportHash       string `json:"report_hash"`
	ReportVersion    string `json:"report_version"`
}

// Signer issues and verifies HMAC-SHA256 signatures over report hashes.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithSignerClock overrides the time source, for deterministic tests.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

// WithTTL sets the signature validity window. Default is 10 years: a signed
// classification report must stay verifiable for the litigation horizon.
func WithTTL(ttl time.Duration) SignerOption {
	return func(s *Signer) { s.ttl = ttl }
}

// NewSigner builds a Signer around a shared secret.
func NewSigner(secret []byte, opts ...SignerOption) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := &Signer{
		secret: secret,
		ttl:    10 * 365 * 24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign issues a JWT over the report's content hash.
func (s *Signer) Sign(r *Report) (string, error) {
	if r.Hash == "" {
		return "", errors.New("report: cannot sign a report without a content hash")
	}
	now := s.now().UTC()
	claims := SignedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   r.ClassificationID,
			Issuer:    signerIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		ClassificationID: r.ClassificationID,
		ReportHash:       r.Hash,
		ReportVersion:    r.Version,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses the token and checks that it covers the given report's hash.
func (s *Signer) Verify(tokenString string, r *Report) (*SignedClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SignedClaims{},
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signerIssuer),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SignedClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.ReportHash != r.Hash {
		return nil, errors.New("report: signature covers a different report hash")
	}
	return claims, nil
}
