package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"tick/internal/service"
)

// authTransport attaches the session's bearer token. A token past its
// expiry is refreshed before sending; a 401 response triggers one refresh
// and one replay of the request. A failed refresh ends the session.
type authTransport struct {
	base    http.RoundTripper
	session *Session
	refresh func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	mu sync.Mutex // serializes refreshes
}

// current returns the stored token, refreshed when it has expired.
func (t *authTransport) current(ctx context.Context) (*oauth2.Token, error) {
	tok, err := t.session.Load()
	if err != nil {
		return nil, err
	}
	if !tok.Valid() && tok.RefreshToken != "" {
		return t.renew(ctx, tok)
	}
	return tok, nil
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.current(req.Context())
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, tok)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if tok.RefreshToken == "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	drain(resp)
	if tok, err = t.renew(req.Context(), tok); err != nil {
		return nil, err
	}
	return t.send(req, tok)
}

func (t *authTransport) send(req *http.Request, tok *oauth2.Token) (*http.Response, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	tok.SetAuthHeader(r)
	return t.base.RoundTrip(r)
}

// renew exchanges the refresh token of stale for a new session. If another
// request already refreshed, the stored token is used instead.
func (t *authTransport) renew(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, err := t.session.Load(); err == nil && cur.AccessToken != stale.AccessToken {
		return cur, nil
	}

	tok, err := t.refresh(ctx, stale.RefreshToken)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		_ = t.session.Remove()
		return nil, fmt.Errorf("session expired (run: tick login): %w", service.ErrUnauthorized)
	}
	if err := t.session.Save(tok); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return tok, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
