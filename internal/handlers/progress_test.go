package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamtv/backend/internal/progress"
)

func newProgressHandler() ProgressHandler {
	return ProgressHandler{Progress: progress.NewCache(progress.NewInMemoryStore(), nil)}
}

func TestProgressHandlerSaveAndGet(t *testing.T) {
	handler := newProgressHandler()

	entry := progress.Entry{ContentID: 12, EpisodeID: 3, Progress: 42.5, CurrentTime: 600, Duration: 1400, Name: "Show"}
	body, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d: %s", http.StatusNoContent, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/progress?contentId=12&episodeId=3", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	var got progress.Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Progress != 42.5 || got.Name != "Show" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped")
	}
}

func TestProgressHandlerSaveRejectsMissingContentID(t *testing.T) {
	handler := newProgressHandler()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress", bytes.NewReader([]byte(`{"progress":10}`)))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestProgressHandlerGetMissing(t *testing.T) {
	handler := newProgressHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress?contentId=99", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProgressHandlerRemove(t *testing.T) {
	handler := newProgressHandler()

	body, _ := json.Marshal(progress.Entry{ContentID: 5, Progress: 80})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress", bytes.NewReader(body))
	handler.Handle(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/progress?contentId=5", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/progress?contentId=5", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected entry gone, got status %d", rec.Code)
	}
}

func TestProgressHandlerContinue(t *testing.T) {
	handler := newProgressHandler()

	for _, entry := range []progress.Entry{
		{ContentID: 1, Progress: 50},
		{ContentID: 2, Progress: 97},
	} {
		body, _ := json.Marshal(entry)
		handler.Handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/progress", bytes.NewReader(body)))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/continue", nil)
	rec := httptest.NewRecorder()
	handler.Continue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	var resp struct {
		ContinueWatching []progress.Entry `json:"continueWatching"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.ContinueWatching) != 1 || resp.ContinueWatching[0].ContentID != 1 {
		t.Fatalf("expected only the unfinished entry, got %+v", resp.ContinueWatching)
	}
}
