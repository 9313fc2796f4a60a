package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeDoer struct {
	lastRequest *http.Request
	response    *http.Response
	err         error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func originResponse(status int, body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestRelayHandlerStreamsOrigin(t *testing.T) {
	doer := &fakeDoer{response: originResponse(http.StatusOK, "media-bytes", map[string]string{
		"Content-Type":   "video/mp4",
		"Content-Length": "11",
		"Accept-Ranges":  "bytes",
	})}
	handler := RelayHandler{Client: doer, Limiter: allowAll{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relay?u=https%3A%2F%2Fcdn.example.com%2Fmovie.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != "media-bytes" {
		t.Fatalf("expected body streamed through, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("expected content type forwarded, got %q", got)
	}
	if doer.lastRequest.URL.String() != "https://cdn.example.com/movie.mp4" {
		t.Fatalf("unexpected origin url %s", doer.lastRequest.URL)
	}
}

func TestRelayHandlerForwardsRange(t *testing.T) {
	doer := &fakeDoer{response: originResponse(http.StatusPartialContent, "chunk", map[string]string{
		"Content-Range": "bytes 100-104/2000",
	})}
	handler := RelayHandler{Client: doer, Limiter: allowAll{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relay?u=https%3A%2F%2Fcdn.example.com%2Fmovie.mp4", nil)
	req.Header.Set("Range", "bytes=100-104")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if got := doer.lastRequest.Header.Get("Range"); got != "bytes=100-104" {
		t.Fatalf("expected range forwarded, got %q", got)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected status %d got %d", http.StatusPartialContent, rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 100-104/2000" {
		t.Fatalf("expected content range forwarded, got %q", got)
	}
}

func TestRelayHandlerRejectsBadTargets(t *testing.T) {
	handler := RelayHandler{Client: &fakeDoer{}, Limiter: allowAll{}}

	for _, target := range []string{"", "ftp%3A%2F%2Fhost%2Ffile", "notaurl", "%2Fetc%2Fpasswd"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/relay?u="+target, nil)
		rec := httptest.NewRecorder()

		handler.Handle(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("target %q: expected status %d got %d", target, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestRelayHandlerOriginFailure(t *testing.T) {
	handler := RelayHandler{Client: &fakeDoer{err: io.ErrUnexpectedEOF}, Limiter: allowAll{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relay?u=https%3A%2F%2Fcdn.example.com%2Fmovie.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d got %d", http.StatusBadGateway, rec.Code)
	}
}

func TestRelayHandlerRateLimited(t *testing.T) {
	handler := RelayHandler{Client: &fakeDoer{}, Limiter: denyAll{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relay?u=https%3A%2F%2Fcdn.example.com%2Fmovie.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestRelayHandlerRejectsWriteMethods(t *testing.T) {
	handler := RelayHandler{Client: &fakeDoer{}, Limiter: allowAll{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/relay?u=https%3A%2F%2Fcdn.example.com%2Fmovie.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
