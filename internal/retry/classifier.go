package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectErrorClassifier decides whether a failed connection attempt is worth
// repeating. Socket failures and server start-up or connection-limit errors
// are transient. Everything else, authentication failures included, is fatal.
type ConnectErrorClassifier struct{}

// NewConnectErrorClassifier creates a new connection error classifier.
func NewConnectErrorClassifier() *ConnectErrorClassifier {
	return &ConnectErrorClassifier{}
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"the database system is starting up",
	"server closed the connection",
	"unexpected eof",
}

// IsTransient determines if an error is temporary and retryable.
func (c *ConnectErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "53300": // too_many_connections
			return true
		case pgErr.Code == "57P03": // cannot_connect_now
			return true
		}
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
