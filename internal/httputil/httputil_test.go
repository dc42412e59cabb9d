package httputil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadSnippetEmpty(t *testing.T) {
	got := ReadSnippet(strings.NewReader(""))
	if got != "(empty body)" {
		t.Errorf("got %q, want %q", got, "(empty body)")
	}
}

func TestReadSnippetShort(t *testing.T) {
	got := ReadSnippet(strings.NewReader("hello"))
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestReadSnippetTruncates(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := ReadSnippet(strings.NewReader(long))
	if !strings.HasSuffix(got, "...") {
		t.Error("expected trailing ellipsis for long input")
	}
	if len(got) != 203 { // 200 bytes + "..."
		t.Errorf("got length %d, want 203", len(got))
	}
}

func TestPostMultipart(t *testing.T) {
	var gotField, gotName, gotType string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		gotField = r.FormValue("caption")
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotType = hdr.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(f)
	}))
	defer srv.Close()

	resp, err := PostMultipart(srv.URL, FileUpload{
		FieldName:   "image",
		FileName:    "icon.png",
		ContentType: "image/png",
		Data:        []byte{1, 2, 3},
	}, [][2]string{{"caption", "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotField != "hi" || gotName != "icon.png" || gotType != "image/png" || len(gotData) != 3 {
		t.Errorf("got field=%q name=%q type=%q data=%v", gotField, gotName, gotType, gotData)
	}
}

func TestCheckStatus(t *testing.T) {
	ok := &http.Response{StatusCode: 204, Body: io.NopCloser(strings.NewReader(""))}
	if err := CheckStatus(ok, "x"); err != nil {
		t.Errorf("204: %v", err)
	}
	bad := &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader("missing"))}
	err := CheckStatus(bad, "discord: webhook")
	if err == nil || !strings.Contains(err.Error(), "discord: webhook returned 404: missing") {
		t.Errorf("404: %v", err)
	}
}
