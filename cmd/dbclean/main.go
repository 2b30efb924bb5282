// Package main implements dbclean, which empties a running taskboard
// deployment of all users and tasks through its HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

type options struct {
	host     string
	port     int
	https    bool
	workers  int
	logLevel string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("dbclean", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "usage: dbclean -u <host> -p <port> [-https] [-workers n]")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.host, "u", "localhost", "API host")
	fs.IntVar(&opts.port, "p", 4000, "API port")
	fs.BoolVar(&opts.https, "https", false, "connect over HTTPS")
	fs.IntVar(&opts.workers, "workers", 4, "concurrent delete requests")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (o options) baseURL() string {
	scheme := "http"
	if o.https {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, o.host, o.port)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	log := logger.New(os.Stderr, opts.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newCleaner(opts.baseURL(), &http.Client{Timeout: 30 * time.Second}, opts.workers, log)
	if err := c.Run(ctx); err != nil {
		log.Error("cleanup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("All users and tasks removed at %s:%d\n", opts.host, opts.port)
}
