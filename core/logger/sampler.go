package logger

import (
	"strconv"
	"strings"
	"sync"
)

// kindSampler lets num out of every den events through, counted separately
// per key so that rare update kinds are not starved by chatty ones.
type kindSampler struct {
	mu       sync.Mutex
	num, den int
	counters map[string]int
}

func newKindSampler(num, den int) *kindSampler {
	s := &kindSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and resets the counters. A non-positive part lets everything through.
func (s *kindSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case num <= 0 || den <= 0:
		num, den = 0, 0
	case num > den:
		num = den
	}
	s.num, s.den = num, den
	s.counters = make(map[string]int)
}

// Allow reports whether the next event of kind passes.
func (s *kindSampler) Allow(kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den == 0 {
		return true
	}
	n := s.counters[kind]%s.den + 1
	s.counters[kind] = n
	return n <= s.num
}

// parseRatioSpec accepts "n/d" or a bare "d" meaning 1/d.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if a, b, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}
