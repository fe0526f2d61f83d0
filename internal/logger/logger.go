// Package logger prints leveled, colored log lines and carries the request
// id through context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

type ctxKey struct{}

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout

	infoTag  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnTag  = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	errorTag = color.New(color.FgRed).SprintFunc()
)

// SetOutput redirects log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Info(format string, a ...interface{}) {
	write(infoTag("[INFO] "), "", format, a...)
}

func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	write(infoTag("[INFO] "), RequestID(ctx), format, a...)
}

func Warn(format string, a ...interface{}) {
	write(warnTag("[WARN] "), "", format, a...)
}

func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	write(warnTag("[WARN] "), RequestID(ctx), format, a...)
}

func Error(format string, a ...interface{}) {
	write(errorTag("[ERROR]"), "", format, a...)
}

func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	write(errorTag("[ERROR]"), RequestID(ctx), format, a...)
}

func write(tag, requestID, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		msg = fmt.Sprintf("[req_id=%s] %s", requestID, msg)
	}
	ts := time.Now().Format("2006/01/02 15:04:05")

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s %s\n", ts, tag, msg)
}
