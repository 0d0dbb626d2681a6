package renderer

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
	"github.com/swyh-go/swyh-go/internal/telemetry"
)

// packageMetrics holds the optional Prometheus counters for every
// renderer's SOAP calls. It's package-level rather than threaded through
// every Renderer/httpClient because SetMetrics is set once at startup,
// before any renderer is admitted, and every renderer in the process
// shares the same Prometheus registry.
var packageMetrics atomic.Pointer[telemetry.RendererMetrics]

// SetMetrics attaches the optional Prometheus counters recording SOAP call
// and fault counts by action. Must be called before discovery starts.
func SetMetrics(m *telemetry.RendererMetrics) { packageMetrics.Store(m) }

const (
	defaultTimeout            = 10 * time.Second
	defaultMaxIdleConns       = 4
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout    = 90 * time.Second
	defaultTLSHandshakeTimeout = 5 * time.Second
	defaultDialTimeout        = 5 * time.Second
	defaultDialKeepAlive      = 30 * time.Second
	userAgent                 = "swyh-go"
)

// httpClient is a small, per-renderer connection-pooled HTTP client. One
// instance is created per renderer and reused across every SOAP call and
// volume poll to amortize TCP connect/handshake overhead, per spec §4.8:
// "a connection-pooling HTTP client (reused across calls)."
type httpClient struct {
	client *http.Client
}

func newHTTPClient() *httpClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: defaultDialKeepAlive,
		}).DialContext,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
	}
	return &httpClient{client: &http.Client{Transport: transport}}
}

func (c *httpClient) postSOAP(ctx context.Context, url, soapAction string, body string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", swyherrors.New(err).Component("renderer").Category(swyherrors.CategorySOAP).Context("url", url).Build()
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", soapAction)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if m := packageMetrics.Load(); m != nil {
			m.RecordSOAPCall(soapAction)
			m.RecordSOAPFault(soapAction)
		}
		return "", swyherrors.New(err).Component("renderer").Category(swyherrors.CategoryNetwork).
			Context("url", url).Context("soap_action", soapAction).Build()
	}
	defer resp.Body.Close()

	buf := make([]byte, 0, 4096)
	readBuf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(readBuf)
		if n > 0 {
			buf = append(buf, readBuf[:n]...)
		}
		if rerr != nil {
			break
		}
	}

	if m := packageMetrics.Load(); m != nil {
		m.RecordSOAPCall(soapAction)
	}

	if resp.StatusCode >= 400 {
		if m := packageMetrics.Load(); m != nil {
			m.RecordSOAPFault(soapAction)
		}
		return string(buf), swyherrors.Newf("soap fault: http %d from %s", resp.StatusCode, url).
			Component("renderer").Category(swyherrors.CategorySOAP).
			Context("soap_action", soapAction).Context("status", resp.StatusCode).Build()
	}
	return string(buf), nil
}

func (c *httpClient) close() {
	c.client.CloseIdleConnections()
}
