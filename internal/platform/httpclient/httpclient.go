package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20 // 1MB
)

var ErrUnavailable = errors.New("httpclient: upstream unavailable")

// Options configura el cliente. Solo BaseURL es obligatorio para paths relativos.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit en requests/seg; <= 0 desactiva el limitador.
	RateLimit float64
	Burst     int

	// BreakerName identifica el circuit breaker en logs/métricas.
	BreakerName string
	// BreakerFailures: fallos consecutivos que abren el circuito (default 5).
	BreakerFailures uint32
	// BreakerCooldown: tiempo en abierto antes de probar (default 30s).
	BreakerCooldown time.Duration

	// Transport permite inyectar un RoundTripper (p.ej. para tests).
	Transport http.RoundTripper
}

// Client envuelve *http.Client con rate limit, circuit breaker y helpers JSON.
type Client struct {
	HTTP    *http.Client
	BaseURL string

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Response]
}

// Request describe una llamada. Body se serializa a JSON si no es nil.
type Request struct {
	Method  string
	Path    string // URL absoluta o path relativo a BaseURL
	Query   url.Values
	Headers map[string]string
	Cookies []*http.Cookie
	Body    any
}

// Response guarda el cuerpo ya leído (limitado a 1MB).
type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// StatusOf devuelve el status de un *HTTPError envuelto, o 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tr := opts.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}

	c := &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}

	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		c.BaseURL = strings.TrimRight(base, "/")
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	name := opts.BreakerName
	if name == "" {
		name = "upstream"
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Los 4xx son respuestas válidas del upstream; no abren el circuito.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			st := StatusOf(err)
			return st >= 400 && st < 500
		},
	})

	return c, nil
}

// Do ejecuta el request. Devuelve *HTTPError si el status no es 2xx.
func (c *Client) Do(ctx context.Context, in Request) (*Response, error) {
	if c == nil || c.HTTP == nil {
		return nil, errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(in.Path)
	if err != nil {
		return nil, err
	}
	if len(in.Query) > 0 {
		fullURL += "?" + in.Query.Encode()
	}

	var payload []byte
	if in.Body != nil {
		payload, err = json.Marshal(in.Body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal json: %w", err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("httpclient: rate limit: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.roundTrip(ctx, in, fullURL, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}

// DoJSON hace un request JSON.
// - method: GET/POST/etc
// - pathOrURL: puede ser URL absoluta o path relativo si BaseURL está seteado
// - headers: headers extra (opcional)
// - in: body a enviar (opcional). Si nil => no body.
// - out: donde decodificar JSON (opcional). Si nil => ignora body.
// Retorna error si status no es 2xx.
func (c *Client) DoJSON(
	ctx context.Context,
	method string,
	pathOrURL string,
	headers map[string]string,
	in any,
	out any,
) error {
	resp, err := c.Do(ctx, Request{
		Method:  method,
		Path:    pathOrURL,
		Headers: headers,
		Body:    in,
	})
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

// DecodeJSON decodifica el cuerpo en out. Cuerpo vacío o out nil no son error.
func (r *Response) DecodeJSON(out any) error {
	if r == nil || out == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, in Request, fullURL string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	method := in.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: new request: %w", err)
	}

	// Defaults
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Extra headers
	for k, v := range in.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}
	for _, ck := range in.Cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := readAtMost(resp.Body, maxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Cookies:    resp.Cookies(),
		Body:       raw,
	}, nil
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}

	// Si ya es URL absoluta, úsala tal cual.
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL, nil
	}

	// Si no es absoluta, requiere BaseURL.
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", errors.New("httpclient: relative path requires BaseURL")
	}

	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.BaseURL + pathOrURL, nil
}

func readAtMost(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = maxBodyBytes
	}
	lr := io.LimitReader(r, max)
	return io.ReadAll(lr)
}

// ResponseStatus traduce un error de upstream al status que debería devolver
// un handler propio: 4xx de upstream se propagan, circuito abierto => 503,
// el resto => 502.
func ResponseStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	if st := StatusOf(err); st >= 400 && st < 500 {
		return st
	}
	return http.StatusBadGateway
}
