package probe

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/hamed0406/statusbot/internal/domain"
)

// Classify maps a query error to a failure kind. The kind only feeds logs and
// metrics; every kind renders the same offline name.
func Classify(err error) domain.Kind {
	if err == nil {
		return domain.KindNone
	}
	if errors.Is(err, domain.ErrNoPlayerData) {
		return domain.KindNoPlayers
	}
	if errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		return domain.KindDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.KindRefused
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.KindTimeout
	}
	return domain.KindProtocol
}

// DNSClass narrows a resolver failure down to "NXDOMAIN" or
// "SERVFAIL_or_TIMEOUT". It returns "" for anything that is not a DNS error.
func DNSClass(err error) string {
	var de *net.DNSError
	if !errors.As(err, &de) {
		return ""
	}
	if de.IsNotFound {
		return "NXDOMAIN"
	}
	if de.IsTemporary || de.Timeout() {
		return "SERVFAIL_or_TIMEOUT"
	}
	return "RESOLVER_ERROR"
}
