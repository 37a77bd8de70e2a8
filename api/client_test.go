package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nebula/models"
)

func TestCallAttachesBearerAndBody(t *testing.T) {
	var gotAuth, gotType string
	var gotBody models.SendMessageBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode failed: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("T1")
	if err := c.SendMessage(context.Background(), 2, "hi"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotAuth != "Bearer T1" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotType)
	}
	if gotBody.ToUserID != 2 || gotBody.Content != "hi" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestCallOmitsAuthWithoutToken(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		b, _ := io.ReadAll(r.Body)
		if len(b) != 0 {
			t.Errorf("GET should carry no body, got %q", b)
		}
		w.Write([]byte(`[{"id":2,"username":"bob"}]`))
	}))
	defer srv.Close()

	users, err := New(srv.URL).SearchUsers(context.Background(), "bob")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if sawAuth {
		t.Fatalf("authorization header sent without token")
	}
	if len(users) != 1 || users[0].Username != "bob" || users[0].ID != 2 {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"json error field", `{"error":"username taken"}`, "username taken"},
		{"json without error", `{"detail":"nope"}`, DefaultErrorMessage},
		{"plain text", "Bad Gateway\n", "Bad Gateway"},
		{"empty body", "", DefaultErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			err := New(srv.URL).Call(context.Background(), http.MethodPost, "/api/register", nil, nil)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.StatusCode != http.StatusConflict {
				t.Fatalf("unexpected status: %d", apiErr.StatusCode)
			}
			if apiErr.Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, apiErr.Message)
			}
		})
	}
}

func TestCallTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Call(context.Background(), http.MethodGet, "/api/friends", nil, nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure should not be an *Error")
	}
}

func TestEndpointPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/api/groups/create":
			w.Write([]byte(`{"id":7,"name":"Team"}`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL + "/")
	c.History(ctx, 2)
	c.GroupHistory(ctx, 7)
	c.SearchUsers(ctx, "a b")
	g, err := c.CreateGroup(ctx, "Team", nil)
	if err != nil || g.ID != 7 {
		t.Fatalf("create group failed: %v %+v", err, g)
	}

	want := []string{
		"GET /api/messages/history/2",
		"GET /api/groups/history/7",
		"GET /api/users/search?q=a+b",
		"POST /api/groups/create",
	}
	if len(paths) != len(want) {
		t.Fatalf("unexpected calls: %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], paths[i])
		}
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRateLimit(0.001, 1))
	ctx := context.Background()
	if _, err := c.Friends(ctx); err != nil {
		t.Fatalf("first call should pass the burst: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.Friends(cancelled); err == nil {
		t.Fatalf("expected throttled call to fail on cancelled context")
	}
}

func TestHistoryToleratesTimestampFormats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"fromUserId":2,"toUserId":1,"content":"a","createdAt":"2024-05-01 12:00:00"},
			{"id":2,"fromUserId":1,"toUserId":2,"content":"b","createdAt":1714564800000},
			{"id":3,"fromUserId":2,"toUserId":1,"content":"c","createdAt":"not a date"}
		]`))
	}))
	defer srv.Close()

	msgs, err := New(srv.URL).History(context.Background(), 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].CreatedAt.IsZero() || !msgs[0].CreatedAt.Equal(msgs[1].CreatedAt.Time) {
		t.Fatalf("unexpected times: %v %v", msgs[0].CreatedAt, msgs[1].CreatedAt)
	}
	if !msgs[2].CreatedAt.IsZero() {
		t.Fatalf("unparseable time should be zero, got %v", msgs[2].CreatedAt)
	}
}
