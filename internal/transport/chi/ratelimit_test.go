package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	handler := RateLimitMiddleware(0, 0)(okHandler())

	for range 50 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/search/contributors", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("disabled limiter: got %d, want %d", rr.Code, http.StatusOK)
		}
	}
}

func TestRateLimitMiddleware_BurstThen429(t *testing.T) {
	handler := RateLimitMiddleware(0.001, 2)(okHandler())

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/search/contributors", http.NoBody))
		codes[i] = rr.Code
		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}
}
