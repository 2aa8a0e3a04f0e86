// Package saludapi implementa los Source de dominio contra la API REST de
// SaludHogar. La sesión (cookie sid) viaja en el contexto de cada llamada.
package saludapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"saludhogar/internal/platform/httpclient"
	"saludhogar/internal/platform/logger"
	"saludhogar/internal/platform/metrics"
	"saludhogar/internal/ports/auth"
)

// CookieName es la cookie de sesión que emite la API.
const CookieName = "sid"

var (
	ErrNotConfigured = errors.New("saludapi client not configured")
	ErrUnauthorized  = errors.New("saludapi unauthorized")
	ErrNoSession     = errors.New("saludapi login returned no session cookie")
)

type Options struct {
	HTTP     *httpclient.Client
	Metrics  *metrics.Metrics
	Log      logger.Logger
	Location *time.Location // zona para fechas sin offset
}

type Client struct {
	http    *httpclient.Client
	metrics *metrics.Metrics
	log     logger.Logger
	loc     *time.Location
}

func New(opts Options) (*Client, error) {
	if opts.HTTP == nil {
		return nil, ErrNotConfigured
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Client{
		http:    opts.HTTP,
		metrics: opts.Metrics,
		log:     opts.Log,
		loc:     opts.Location,
	}, nil
}

// call hace el request con la cookie de ctx y decodifica out (si no es nil).
// op identifica la operación en métricas y logs.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, in, out any) (*httpclient.Response, error) {
	req := httpclient.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   in,
	}
	if sid := auth.SessionFrom(ctx); sid != "" {
		req.Cookies = []*http.Cookie{{Name: CookieName, Value: sid}}
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		st := httpclient.StatusOf(err)
		if st == http.StatusUnauthorized {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
		}
		if st == 0 || st >= 500 {
			c.metrics.UpstreamError(op)
			c.log.Warn("upstream call failed", map[string]any{"op": op, "status": st, "error": err})
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := resp.DecodeJSON(out); err != nil {
		c.metrics.UpstreamError(op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func familyPath(familyID string, rest ...string) string {
	p := "/families/" + url.PathEscape(familyID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}
