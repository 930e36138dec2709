package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmelats/loanbook/internal/utils"
)

const otpDigits = 6

// ErrInvalidOTP is returned when an {email, code} pair does not verify.
// Wrong, expired and already-used codes are indistinguishable to the caller.
var ErrInvalidOTP = errors.New("invalid otp")

// ErrDelivery is returned when the verification email cannot be sent. The
// code is not persisted in that case; the caller may retry the whole flow.
var ErrDelivery = errors.New("failed to deliver otp email")

// CodeStore is the persistence contract for one-time codes. The store owns
// expiry: a saved code must disappear on its own after ttl.
type CodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

// Sender delivers a plain-text email. Implemented by internal/mailer.
type Sender interface {
	Send(to, subject, body string) error
}

// OTPService issues and verifies one-time codes tied to an email address.
type OTPService struct {
	Codes CodeStore
	Mail  Sender
	TTL   time.Duration
}

func NewOTPService(codes CodeStore, mail Sender, ttl time.Duration) *OTPService {
	return &OTPService{Codes: codes, Mail: mail, TTL: ttl}
}

// Issue generates a 6-digit code, emails it, then persists it with the
// configured TTL. Sending happens first so a delivery failure never leaves a
// live code behind. No retry is attempted here.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	code, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return err
	}
	if err := s.Mail.Send(email, "Verification OTP", "Your OTP code is: "+code); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return s.Codes.Save(ctx, email, code, s.TTL)
}

// Verify consumes the {email, code} pair. Success implies the code existed
// and had not expired; the pair can never verify twice.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	ok, err := s.Codes.Consume(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}
