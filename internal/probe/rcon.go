package probe

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/gorcon/rcon"

	"github.com/hamed0406/statusbot/internal/domain"
)

// RCON asks the server console for "list". Port is the RCON port.
type RCON struct {
	Password string
}

func NewRCON(password string) *RCON {
	return &RCON{Password: password}
}

var (
	formatCodes = regexp.MustCompile(`§.`)
	listPattern = regexp.MustCompile(`There are (\d+)(?: of a max of | out of maximum |/)(\d+) players? online`)
)

func (r *RCON) Query(ctx context.Context, host string, port uint16) (domain.Players, error) {
	timeout := Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return domain.Players{}, context.DeadlineExceeded
	}

	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := rcon.Dial(addr, r.Password, rcon.SetDialTimeout(timeout), rcon.SetDeadline(timeout))
	if err != nil {
		return domain.Players{}, fmt.Errorf("rcon dial %s: %w", addr, err)
	}
	defer conn.Close()

	out, err := conn.Execute("list")
	if err != nil {
		return domain.Players{}, fmt.Errorf("rcon list: %w", err)
	}
	return parseList(out)
}

func parseList(out string) (domain.Players, error) {
	m := listPattern.FindStringSubmatch(formatCodes.ReplaceAllString(out, ""))
	if m == nil {
		return domain.Players{}, fmt.Errorf("unrecognised list output %q: %w", out, domain.ErrNoPlayerData)
	}
	online, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return domain.Players{}, fmt.Errorf("list online: %w", domain.ErrNoPlayerData)
	}
	limit, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return domain.Players{}, fmt.Errorf("list max: %w", domain.ErrNoPlayerData)
	}
	return domain.Players{Online: uint32(online), Max: uint32(limit)}, nil
}
