package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

var errBoom = errors.New("boom")

type testCodec struct{}

func (testCodec) Encode(text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := range text {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (testCodec) Decode(ids []int) (string, error) {
	b := make([]byte, len(ids))
	for i, id := range ids {
		b[i] = byte(id)
	}
	return string(b), nil
}

type testSession struct {
	batch   int
	counter byte
	err     error
}

func (s *testSession) Generate(prompt []int) ([][]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]int, s.batch)
	for i := range out {
		s.counter++
		out[i] = []int{int('a' + s.counter - 1)}
	}
	return out, nil
}

func (s *testSession) BatchSize() int { return s.batch }
func (s *testSession) Model() string  { return "small" }

func newTestEcho(sess *testSession, defaultSamples int) *echo.Echo {
	e := echo.New()
	NewServer(sess, testCodec{}, defaultSamples).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCompletionsReturnsOrderedSamples(t *testing.T) {
	e := newTestEcho(&testSession{batch: 2}, 4)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp CompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Model != "small" {
		t.Fatalf("model: got %q", resp.Model)
	}
	if !strings.HasPrefix(resp.ID, "cmpl_") {
		t.Fatalf("id: got %q", resp.ID)
	}
	if len(resp.Completions) != 4 {
		t.Fatalf("completions: got %d want 4", len(resp.Completions))
	}
	for i, comp := range resp.Completions {
		if comp.Index != i+1 {
			t.Fatalf("completion %d: index %d", i, comp.Index)
		}
	}
	// Two rounds of the two-slot batch, in generation order.
	want := []string{"a", "b", "c", "d"}
	for i, comp := range resp.Completions {
		if comp.Text != want[i] {
			t.Fatalf("completion %d: got %q want %q", i, comp.Text, want[i])
		}
	}
}

func TestCompletionsSamplesOverride(t *testing.T) {
	e := newTestEcho(&testSession{batch: 1}, 1)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"hi","samples":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp CompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Completions) != 3 {
		t.Fatalf("completions: got %d want 3", len(resp.Completions))
	}
}

func TestCompletionsRejectsEmptyPrompt(t *testing.T) {
	e := newTestEcho(&testSession{batch: 1}, 1)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCompletionsRejectsBadSampleRatio(t *testing.T) {
	e := newTestEcho(&testSession{batch: 2}, 2)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"hi","samples":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "multiple of batch size") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestCompletionsRejectsMalformedBody(t *testing.T) {
	e := newTestEcho(&testSession{batch: 1}, 1)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCompletionsGenerationFailure(t *testing.T) {
	e := newTestEcho(&testSession{batch: 1, err: errBoom}, 1)
	rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEcho(&testSession{batch: 1}, 1)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "small") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}
