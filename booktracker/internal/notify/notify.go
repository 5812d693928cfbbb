package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is the user-visible toast channel. Implementations must be safe
// for concurrent use: the error translator notifies from transport goroutines.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) { c.print(LevelSuccess, msg) }
func (c *Console) Error(msg string)   { c.print(LevelError, msg) }

func (c *Console) print(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mark := "ok"
	if level == LevelError {
		mark = "!!"
	}
	_, _ = fmt.Fprintf(c.w, "[%s] %s\n", mark, msg)
}

type logNotifier struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) Notifier {
	return &logNotifier{log: log.Named("notify")}
}

func (n *logNotifier) Success(msg string) { n.log.Info(msg, zap.String("level", string(LevelSuccess))) }
func (n *logNotifier) Error(msg string)   { n.log.Warn(msg, zap.String("level", string(LevelError))) }

type multi []Notifier

// Multi fans every notification out to all ns in order.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

func (m multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
