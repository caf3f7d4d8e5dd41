package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/testutil"
)

// testEnv sets up a temp store, service, and router for testing.
// An empty authToken means auth-disabled mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	_, files := testutil.TestImportDir(t)
	svc := noteservice.NewService(db, files)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func createNote(t *testing.T, router http.Handler, title, content string) models.Note {
	t.Helper()
	body, _ := json.Marshal(CreateNoteRequest{Title: title, Content: content})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var n models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &n); err != nil {
		t.Fatalf("decode created note: %v", err)
	}
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	created := createNote(t, router, "Hello", "line1\n  line2")

	req := httptest.NewRequest(http.MethodGet, "/notes/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var note models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Title != "Hello" {
		t.Errorf("title = %q", note.Title)
	}
	if note.Content != "line1\n  line2" {
		t.Errorf("content = %q, whitespace must be preserved", note.Content)
	}
}

func TestGetMissingNote(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/notes/01JUNKNOWNIDX0000000000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "not found" {
		t.Errorf("error body = %q", resp["error"])
	}
}

func TestRepeatedGetIsIdentical(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, "Stable", "fixed content\n")

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/notes/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("get #%d status = %d", i, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Error("repeated lookups returned different payloads")
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, "Lock", "v1")

	updateBody, _ := json.Marshal(UpdateNoteRequest{Title: "Lock", Content: "v2"})
	req := httptest.NewRequest(http.MethodPut, "/notes/"+created.ID, bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Same checksum is stale now.
	req = httptest.NewRequest(http.MethodPut, "/notes/"+created.ID, bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, "Bye", "gone")

	req := httptest.NewRequest(http.MethodDelete, "/notes/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/notes/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "A", "a")
	createNote(t, router, "B", "b")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Errorf("list = %d/%d, want 2/2", len(resp.Notes), resp.Total)
	}
}

func TestSearch(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "Groceries", "buy milk")
	createNote(t, router, "Work", "ship release")

	req := httptest.NewRequest(http.MethodGet, "/search?q=milk", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Title != "Groceries" {
		t.Errorf("title = %q", resp.Results[0].Title)
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	// No token: 401.
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", w.Code)
	}

	// Wrong token: 401.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d, want 401", w.Code)
	}

	// Correct token: 200.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("correct token = %d, want 200", w.Code)
	}
}

func TestUpdateTags(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(CreateNoteRequest{Title: "Tagged", Content: "body", Tags: []string{"work"}})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	// Omitting tags keeps the stored ones.
	updateBody, _ := json.Marshal(UpdateNoteRequest{Title: "Tagged", Content: "body v2"})
	req = httptest.NewRequest(http.MethodPut, "/notes/"+created.ID, bytes.NewReader(updateBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var kept models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &kept)
	if len(kept.Tags) != 1 || kept.Tags[0] != "work" {
		t.Errorf("tags = %v, omitted field must keep stored tags", kept.Tags)
	}

	// Sending tags replaces them.
	updateBody, _ = json.Marshal(UpdateNoteRequest{Title: "Tagged", Content: "body v3", Tags: []string{"home"}})
	req = httptest.NewRequest(http.MethodPut, "/notes/"+created.ID, bytes.NewReader(updateBody))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var replaced models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &replaced)
	if len(replaced.Tags) != 1 || replaced.Tags[0] != "home" {
		t.Errorf("tags = %v, want [home]", replaced.Tags)
	}
}

func TestCreateReachesSubscriber(t *testing.T) {
	db := testutil.TestDB(t)
	_, files := testutil.TestImportDir(t)
	svc := noteservice.NewService(db, files)

	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	svc.SetEvents(broker.PublishNoteEvent)

	router := NewRouter(svc, false, "", broker)
	sub := broker.Subscribe()

	created := createNote(t, router, "Live", "hello")

	select {
	case msg, ok := <-sub:
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		frame := string(msg)
		if !strings.Contains(frame, "event: note.created") {
			t.Errorf("frame = %q, want note.created", frame)
		}
		if !strings.Contains(frame, created.ID) {
			t.Errorf("frame = %q, want note id %s", frame, created.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no SSE frame after API create")
	}
}

func TestCreateValidation(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte(`{"title":"x"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing content = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte(`{not json`)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}
