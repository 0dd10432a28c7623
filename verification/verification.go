package verification

import (
	"context"
	"errors"
	"fmt"
	"rovify-backend/logger"
	"rovify-backend/response"
	"rovify-backend/twilio"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	PurposePayout = "payout"

	codeTTL     = 5 * time.Minute
	maxAttempts = 5
	issuer      = "Rovify"
)

var codeOpts = totp.ValidateOpts{
	Period:    uint(codeTTL / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Service sends one-time codes by SMS and checks them. Every code is derived from a fresh TOTP
// secret that lives in the store for codeTTL, so a code can be used once.
type Service struct {
	store  Store
	sender twilio.Sender
	now    func() time.Time
}

func New(store Store, sender twilio.Sender) *Service {
	return &Service{store: store, sender: sender, now: time.Now}
}

// Send issues a code for subject and texts it to phone.
func (s *Service) Send(ctx context.Context, purpose, subject, phone string) error {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: subject,
		Period:      codeOpts.Period,
		Digits:      codeOpts.Digits,
		Algorithm:   codeOpts.Algorithm,
	})
	if err != nil {
		return fmt.Errorf("send: unable to generate secret: %w", err)
	}

	code, err := totp.GenerateCodeCustom(key.Secret(), s.now(), codeOpts)
	if err != nil {
		return fmt.Errorf("send: unable to generate code: %w", err)
	}

	sk := storeKey(purpose, subject)
	if err := s.store.Set(ctx, sk, key.Secret(), codeTTL); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := s.store.Del(ctx, attemptsKey(sk)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	sid, err := s.sender.Send(ctx, phone, fmt.Sprintf("Your Rovify verification code is %s", code))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Infof(ctx, "send: %s code sent, message sid: %s", purpose, sid)
	return nil
}

// Verify checks code for subject. A missing secret means the code expired or was never sent. After
// maxAttempts wrong codes the secret is dropped and a new code must be requested. A correct code
// passes once even when presented concurrently.
func (s *Service) Verify(ctx context.Context, purpose, subject, code string) error {
	key := storeKey(purpose, subject)
	secret, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return response.OTPExpired()
	}
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	ok, err := totp.ValidateCustom(code, secret, s.now(), codeOpts)
	if err != nil || !ok {
		return s.reject(ctx, key)
	}

	taken, err := s.store.Take(ctx, key)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !taken {
		return response.OTPExpired()
	}
	if err := s.store.Del(ctx, attemptsKey(key)); err != nil {
		logger.Warnf(ctx, "verify: unable to clear attempts: %v", err)
	}
	return nil
}

func (s *Service) reject(ctx context.Context, key string) error {
	n, err := s.store.Incr(ctx, attemptsKey(key), codeTTL)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if n < maxAttempts {
		return response.OTPMismatch()
	}

	if err := s.store.Del(ctx, key, attemptsKey(key)); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	logger.Warnf(ctx, "verify: %s locked after %d wrong codes", key, n)
	return response.OTPLocked()
}

func storeKey(purpose, subject string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, subject)
}

func attemptsKey(key string) string {
	return key + ":attempts"
}
