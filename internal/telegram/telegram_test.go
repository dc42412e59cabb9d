package telegram

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// withServer points apiBase at a test server for the duration of the test.
func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	orig := apiBase
	apiBase = srv.URL
	t.Cleanup(func() {
		apiBase = orig
		srv.Close()
	})
}

func TestSendSuccess(t *testing.T) {
	var gotPath, gotChatID, gotText string
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotPath = r.URL.Path
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		w.Write([]byte(`{"ok":true}`))
	})

	if err := Send("TOKEN", "123456", "hello world"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotChatID != "123456" || gotText != "hello world" {
		t.Errorf("chat_id = %q, text = %q", gotChatID, gotText)
	}
}

func TestSendError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if err := Send("TOKEN", "123456", "test"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestSendPhoto(t *testing.T) {
	var gotPath, gotCaption, gotName, gotType string
	var gotSize int
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotCaption = r.FormValue("caption")
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName, gotType, gotSize = hdr.Filename, hdr.Header.Get("Content-Type"), len(data)
	})

	if err := SendPhoto("TOKEN", "42", "new icon", "apple-touch-icon.png", make([]byte, 100)); err != nil {
		t.Fatalf("SendPhoto: %v", err)
	}
	if gotPath != "/botTOKEN/sendPhoto" || gotCaption != "new icon" {
		t.Errorf("path = %q caption = %q", gotPath, gotCaption)
	}
	if gotName != "apple-touch-icon.png" || gotType != "image/png" || gotSize != 100 {
		t.Errorf("file = %q %q %d", gotName, gotType, gotSize)
	}
}
