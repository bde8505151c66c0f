package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CaptchaSessionKey is where the expected answer lives in the session.
const CaptchaSessionKey = "captcha_answer"

// CaptchaService issues the small arithmetic check shown on the register page.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededCaptchaService is for tests that need a fixed sequence.
func NewSeededCaptchaService(seed int64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(seed))}
}

// GenerateMathProblem returns the question (e.g. "3 + 5") and its answer.
// Subtractions never go negative.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	s.mu.Lock()
	a, b, op := s.rnd.Intn(10), s.rnd.Intn(10), s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Verify compares a submitted answer with the stored one.
func (s *CaptchaService) Verify(submitted string, expected any) bool {
	got, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil {
		return false
	}
	switch want := expected.(type) {
	case int:
		return got == want
	case int64:
		return int64(got) == want
	case float64:
		return float64(got) == want
	}
	return false
}
