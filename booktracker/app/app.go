package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/config"
	"github.com/Astemirdum/booktracker/booktracker/internal/booklist"
	"github.com/Astemirdum/booktracker/booktracker/internal/fakeapi"
	"github.com/Astemirdum/booktracker/booktracker/internal/interceptor"
	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/booktracker/internal/service/books"
	"github.com/Astemirdum/booktracker/booktracker/internal/shell"
	"github.com/Astemirdum/booktracker/booktracker/internal/transport"
	"github.com/Astemirdum/booktracker/pkg/circuit_breaker"
	"github.com/Astemirdum/booktracker/pkg/kafka"
	"github.com/Astemirdum/booktracker/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client is the wired API client with its notification fan-out.
type Client struct {
	Log      *zap.Logger
	Notifier notify.Notifier
	Books    *books.Service

	kafka *notify.Kafka
}

func NewClient(cfg config.Config, out io.Writer) (*Client, error) {
	log := logger.NewLogger(cfg.Log, "booktracker")

	notifiers := []notify.Notifier{notify.NewConsole(out), notify.NewLog(log)}
	c := &Client{Log: log}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, errors.Wrap(err, "kafka producer")
		}
		c.kafka = notify.NewKafka(producer, cfg.NotifyTopic, log)
		notifiers = append(notifiers, c.kafka)
	}
	c.Notifier = notify.Multi(notifiers...)

	rt := transport.Chain(http.DefaultTransport,
		interceptor.ErrorTranslator(c.Notifier, log),
		transport.RequestID(),
		transport.Logging(log.Named("http")),
		transport.RateLimit(rate.Limit(cfg.API.RPS), cfg.API.Burst),
		transport.CircuitBreaker(circuit_breaker.NewWithConfig(cfg.CircuitBreaker)),
	)
	c.Books = books.NewService(log, cfg.API.URL, cfg.API.Timeout, rt)
	return c, nil
}

func (c *Client) Close() {
	if c.kafka != nil {
		if err := c.kafka.Close(); err != nil {
			c.Log.Warn("kafka close", zap.Error(err))
		}
	}
	_ = c.Log.Sync()
}

// Run serves the interactive shell until exit, EOF or a termination signal.
func Run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	c, err := NewClient(cfg, out)
	if err != nil {
		return err
	}
	defer c.Close()
	log := c.Log

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := loop.New(log)
	view := booklist.New(ctx, log, d, c.Books, c.Notifier)
	defer view.Close()
	sh := shell.New(log, d, view, in, out)

	d.Post(func() { view.Open(cfg.Route) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := d.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return sh.Run(gctx)
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sig)
		select {
		case termSig := <-sig:
			log.Debug("Graceful shutdown", zap.Any("signal", termSig))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	err = g.Wait()
	log.Info("booktracker stopped")
	return err
}

// RunFakeServer serves the in-memory books API until a termination signal.
func RunFakeServer(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "fake-api")
	h := fakeapi.New(fakeapi.NewMemoryStore(fakeapi.SeedBooks()...), log)

	srv := fakeapi.NewServer(cfg.FakeHTTPServer.Host, cfg.FakeHTTPServer.Port, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

// PrintBooks writes books as a table; see shell.PrintBooks.
func PrintBooks(w io.Writer, books []model.Book) { shell.PrintBooks(w, books) }

// PrintBook writes one book's details; see shell.PrintBook.
func PrintBook(w io.Writer, b model.Book) { shell.PrintBook(w, b) }
