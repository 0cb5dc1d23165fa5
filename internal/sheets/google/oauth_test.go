package google

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"finance/internal/core"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
)

const testClientJSON = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestNew_OAuthErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing token", Options{SpreadsheetID: "s", OAuthClientJSON: testClientJSON}, "missing oauth token"},
		{"bad client", Options{SpreadsheetID: "s", OAuthClientJSON: "invalid-json", OAuthTokenJSON: `{"access_token":"x"}`}, "oauth config"},
		{"bad token", Options{SpreadsheetID: "s", OAuthClientJSON: testClientJSON, OAuthTokenJSON: `{}`}, "neither access nor refresh"},
		{"missing client file", Options{SpreadsheetID: "s", OAuthClientFile: "/non/existent/client.json"}, "read oauth client file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestNew_OAuthTokenIsSent(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A2:F2"},
		})
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID:   "sheet-123",
		OAuthClientJSON: testClientJSON,
		OAuthTokenJSON:  `{"access_token":"user-token","token_type":"Bearer"}`,
	}, goption.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := c.ExportTransaction(context.Background(), core.Transaction{ID: 1, Type: core.Income, Amount: 1, Date: core.NewDate(2025, 3, 1)}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if auth != "Bearer user-token" {
		t.Fatalf("Authorization = %q", auth)
	}
}

func TestSaveAndParseToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	b, _ := os.ReadFile(path)
	tok, err := ParseToken(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tok.AccessToken != "a" || tok.RefreshToken != "r" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

// syncBuffer lets the test read what Authorize prints while it runs.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startAuthorize(t *testing.T) (*syncBuffer, string, <-chan error, **oauth2.Token) {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example/auth", TokenURL: tokenSrv.URL},
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	out := &syncBuffer{}
	done := make(chan error, 1)
	var tok *oauth2.Token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go func() {
		var err error
		tok, err = Authorize(ctx, cfg, ln, out)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "https://") {
		if time.Now().After(deadline) {
			t.Fatal("consent URL was never printed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	consent, err := url.Parse(lines[len(lines)-1])
	if err != nil {
		t.Fatalf("parse consent URL: %v", err)
	}
	return out, consent.Query().Get("redirect_uri") + "?state=" + consent.Query().Get("state"), done, &tok
}

func TestAuthorize(t *testing.T) {
	_, callback, done, tok := startAuthorize(t)

	resp, err := http.Get(callback + "&code=the-code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status = %d", resp.StatusCode)
	}

	if err := <-done; err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if (*tok).AccessToken != "tok-1" || (*tok).RefreshToken != "ref-1" {
		t.Fatalf("unexpected token %+v", *tok)
	}
}

func TestAuthorize_StateMismatch(t *testing.T) {
	_, callback, done, _ := startAuthorize(t)

	forged := callback[:strings.Index(callback, "?")] + "?state=forged&code=the-code"
	resp, err := http.Get(forged)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("callback status = %d", resp.StatusCode)
	}

	if err := <-done; err == nil || !strings.Contains(err.Error(), "state mismatch") {
		t.Fatalf("expected state mismatch, got %v", err)
	}
}
