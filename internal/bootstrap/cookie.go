package bootstrap

import "context"

// PrimeResult is the outcome of the cross-domain cookie check.
type PrimeResult int

const (
	PrimeSkipped PrimeResult = iota
	PrimeSucceeded
	PrimeFailed
	PrimePending // still running when the outcome committed
)

// String returns the result name.
func (r PrimeResult) String() string {
	switch r {
	case PrimeSkipped:
		return "skipped"
	case PrimeSucceeded:
		return "succeeded"
	case PrimeFailed:
		return "failed"
	case PrimePending:
		return "pending"
	default:
		return "unknown"
	}
}

// CookieService performs the cookie write-and-verify round trip.
type CookieService interface {
	PrimeCookie(ctx context.Context) error
}

// primeCookies runs the handshake unless reduced functionality is forced.
// Failure never stops the bootstrap.
func (s *Sequencer) primeCookies(ctx context.Context) PrimeResult {
	if s.env.ForceReducedFunc {
		s.log.Debug().Msg("reduced functionality forced, skipping cookie priming")
		s.metrics.CookiePrime(PrimeSkipped.String())
		return PrimeSkipped
	}

	result := PrimeSucceeded
	if err := s.cookies.PrimeCookie(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cookie priming failed, continuing with reduced functionality")
		result = PrimeFailed
	}
	s.metrics.CookiePrime(result.String())
	return result
}
