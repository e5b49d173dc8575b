package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler passes the first N of every M events. A zero ratio
// disables sampling and lets everything through.
type ratioSampler struct {
	mu          sync.Mutex
	numerator   int
	denominator int
	counter     int
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set configures the sampling ratio using numerator/denominator.
func (s *ratioSampler) Set(numerator, denominator int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if numerator <= 0 || denominator <= 0 {
		s.numerator, s.denominator, s.counter = 0, 0, 0
		return
	}
	if numerator > denominator {
		numerator = denominator
	}
	s.numerator = numerator
	s.denominator = denominator
	s.counter = 0
}

// Allow reports whether the current event should pass sampling.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denominator <= 0 || s.numerator <= 0 {
		return true
	}
	s.counter++
	if s.counter > s.denominator {
		s.counter = 1
	}
	return s.counter <= s.numerator
}

// parseRatioSpec accepts "n/m" or a bare "m" meaning one in m.
// Anything unparseable disables sampling.
func parseRatioSpec(spec string) (num, den int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if before, after, found := strings.Cut(spec, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(before))
		m, err2 := strconv.Atoi(strings.TrimSpace(after))
		if err1 == nil && err2 == nil {
			return n, m
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
