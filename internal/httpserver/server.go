// Package httpserver exposes the streaming endpoints renderers connect back
// to, built on echo the way the teacher's internal/httpserver wires its API
// surface.
package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/swyh-go/swyh-go/internal/bus"
	"github.com/swyh-go/swyh-go/internal/conf"
	"github.com/swyh-go/swyh-go/internal/encode"
	"github.com/swyh-go/swyh-go/internal/events"
	"github.com/swyh-go/swyh-go/internal/telemetry"
)

// ClientSource supplies the live normalized-PCM bus a new StreamingClient
// subscribes to, plus the stream's current format parameters.
type ClientSource interface {
	Subscribe() *bus.Subscription
	Unsubscribe(*bus.Subscription)
	SampleRate() uint32
	Channels() int
}

// Server is the streaming HTTP server described in spec §4.6.
type Server struct {
	echo   *echo.Echo
	store  *conf.Store
	source ClientSource
	bus    *events.Bus
	log    *slog.Logger

	metrics *telemetry.ClientMetrics
}

// SetMetrics attaches optional Prometheus client counters. Must be called
// before Start; a nil metrics (the default) means connects/disconnects are
// only reflected in the ClientConnected/ClientDisconnected events.
func (s *Server) SetMetrics(m *telemetry.ClientMetrics) { s.metrics = m }

// New builds a Server bound to 0.0.0.0:<store's configured port>.
func New(store *conf.Store, source ClientSource, evBus *events.Bus, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, store: store, source: source, bus: evBus, log: log.With("component", "httpserver")}

	e.Use(middleware.RequestID())
	e.Use(s.debugLogRequest)

	e.GET("/stream/swyh.raw", s.streamHandler(conf.FormatLPCM))
	e.GET("/stream/swyh.wav", s.streamHandler(conf.FormatWAV))
	e.GET("/stream/swyh.rf64", s.streamHandler(conf.FormatRF64))
	e.GET("/stream/swyh.flac", s.streamHandler(conf.FormatFLAC))

	return s
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called, matching the teacher's Start()/Shutdown() server interface shape.
func (s *Server) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.store.Get().ServerPort)
	s.log.Info("streaming server listening", "addr", addr)
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ExposeMetrics mounts the Prometheus exposition handler at /metrics on
// this same listener, so the optional telemetry endpoint (spec §C) doesn't
// need a second port.
func (s *Server) ExposeMetrics(handler http.Handler) {
	s.echo.GET("/metrics", echo.WrapHandler(handler))
}

func (s *Server) debugLogRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.log.Debug("request", "method", c.Request().Method, "path", c.Request().URL.Path, "headers", c.Request().Header, "remote", c.Request().RemoteAddr)
		return next(c)
	}
}

func (s *Server) streamHandler(urlFormat conf.StreamFormat) echo.HandlerFunc {
	return func(c echo.Context) error {
		settings := s.store.Get()

		format := urlFormat
		bitDepth := settings.BitDepth
		if bd := c.QueryParam("bd"); bd != "" {
			if v, err := strconv.Atoi(bd); err == nil && (v == 16 || v == 24) {
				bitDepth = v
			}
		}
		sizePolicy := settings.StreamSizePolicy
		if ss := c.QueryParam("ss"); ss != "" {
			if p, ok := parseStreamSize(ss); ok {
				sizePolicy = p
			}
		}

		resp := c.Response()
		resp.Header().Set(echo.HeaderContentType, encode.MIMEType(format))
		applySizePolicy(resp, sizePolicy)

		resp.WriteHeader(http.StatusOK)

		sub := s.source.Subscribe()
		defer s.source.Unsubscribe(sub)

		s.bus.Publish(events.Event{Kind: events.ClientConnected, ClientAddr: c.RealIP()})
		if s.metrics != nil {
			s.metrics.RecordConnected(string(format))
		}
		defer func() {
			s.bus.Publish(events.Event{Kind: events.ClientDisconnected, ClientAddr: c.RealIP()})
			if s.metrics != nil {
				s.metrics.RecordDisconnected()
			}
		}()

		enc := encode.New(format, s.source.SampleRate(), s.source.Channels(), bitDepth)

		if settings.UpFrontBufferMS > 0 {
			time.Sleep(time.Duration(settings.UpFrontBufferMS) * time.Millisecond)
		}

		buf := make([]byte, 32*1024)
		clientDone := c.Request().Context().Done()
		for {
			select {
			case <-clientDone:
				return nil
			default:
			}

			n, err := sub.Read(buf)
			if n > 0 {
				if werr := enc.Write(resp, buf[:n]); werr != nil {
					s.log.Debug("client write failed, tearing down", "remote", c.RealIP(), "error", werr)
					if s.metrics != nil {
						s.metrics.RecordWriteError()
					}
					return nil
				}
				resp.Flush()
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				s.log.Debug("subscription read error, tearing down", "remote", c.RealIP(), "error", err)
				return nil
			}
		}
	}
}

func parseStreamSize(token string) (conf.StreamSizePolicy, bool) {
	switch strings.ToLower(token) {
	case "nonechunked":
		return conf.StreamSizeNoneChunked, true
	case "u32maxchunked":
		return conf.StreamSizeU32MaxChunked, true
	case "u64maxchunked":
		return conf.StreamSizeU64MaxChunked, true
	case "u32maxnotchunked":
		return conf.StreamSizeU32MaxNotChunked, true
	case "u64maxnotchunked":
		return conf.StreamSizeU64MaxNotChunked, true
	default:
		return "", false
	}
}

// applySizePolicy sets Content-Length/Transfer-Encoding per spec §4.6.
// Accept-Ranges is never set, on any path, since some renderers
// misinterpret "Accept-Ranges: none".
func applySizePolicy(resp *echo.Response, policy conf.StreamSizePolicy) {
	const u32Max = math.MaxUint32
	const u64MaxMinus1 = uint64(math.MaxUint64) - 1

	switch policy {
	case conf.StreamSizeNoneChunked:
		// no Content-Length, no chunked encoding
	case conf.StreamSizeU32MaxChunked:
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(u32Max, 10))
		resp.Header().Set("Transfer-Encoding", "chunked")
	case conf.StreamSizeU64MaxChunked:
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(math.MaxUint64, 10))
		resp.Header().Set("Transfer-Encoding", "chunked")
	case conf.StreamSizeU32MaxNotChunked:
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(u32Max-1, 10))
	case conf.StreamSizeU64MaxNotChunked:
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(u64MaxMinus1, 10))
	}
}
