package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return NewClient("http://auth.test/",
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
		WithRetryBase(time.Millisecond),
		WithTimeout(2*time.Second),
	)
}

func TestLoginReturnsToken(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != loginPath || !ctx.IsPost() {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username != "alice" || req.Password != "pw" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"token":"jwt-abc","username":"alice"}`)
	})
	token, user, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "jwt-abc" || user != "alice" {
		t.Fatalf("token=%q user=%q", token, user)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString(`{"message":"invalid_credentials"}`)
	})
	_, _, err := c.Login(context.Background(), "alice", "bad")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx retried: calls=%d", calls.Load())
	}
}

func TestLoginRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetBodyString(`{"token":"t2","username":"bob"}`)
	})
	token, _, err := c.Login(context.Background(), "bob", "pw")
	if err != nil || token != "t2" {
		t.Fatalf("token=%q err=%v", token, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestLoginGivesUpAfterRetries(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
		ctx.SetBodyString("upstream down")
	})
	_, _, err := c.Login(context.Background(), "bob", "pw")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusBadGateway || apiErr.Body != "upstream down" {
		t.Fatalf("err = %v", err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	c := NewClient("http://unused")
	if _, _, err := c.Login(context.Background(), " ", "pw"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoginWithoutToken(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) { ctx.SetBodyString(`{"username":"x"}`) })
	if _, _, err := c.Login(context.Background(), "x", "pw"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestBackoffDuration(t *testing.T) {
	base := 100 * time.Millisecond
	if backoffDuration(base, 1) != base || backoffDuration(base, 3) != 4*base || backoffDuration(base, 20) != 32*base {
		t.Fatalf("unexpected backoff progression")
	}
}
