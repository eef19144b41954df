package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sandertv/go-raknet"

	"github.com/hamed0406/statusbot/internal/domain"
)

// Bedrock queries a Bedrock Edition server with a RakNet unconnected ping.
type Bedrock struct {
	ping func(ctx context.Context, addr string) ([]byte, error)
}

func NewBedrock() *Bedrock {
	return &Bedrock{ping: raknet.PingContext}
}

func (b *Bedrock) Query(ctx context.Context, host string, port uint16) (domain.Players, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	pong, err := b.ping(ctx, addr)
	if err != nil {
		return domain.Players{}, fmt.Errorf("raknet ping %s: %w", addr, err)
	}
	return parsePong(pong)
}

// parsePong reads the counts out of "MCPE;motd;protocol;version;online;max;...".
func parsePong(pong []byte) (domain.Players, error) {
	fields := strings.Split(string(pong), ";")
	if len(fields) < 6 {
		return domain.Players{}, fmt.Errorf("pong has %d fields: %w", len(fields), domain.ErrNoPlayerData)
	}
	online, err := strconv.ParseUint(strings.TrimSpace(fields[4]), 10, 32)
	if err != nil {
		return domain.Players{}, fmt.Errorf("pong online %q: %w", fields[4], domain.ErrNoPlayerData)
	}
	limit, err := strconv.ParseUint(strings.TrimSpace(fields[5]), 10, 32)
	if err != nil {
		return domain.Players{}, fmt.Errorf("pong max %q: %w", fields[5], domain.ErrNoPlayerData)
	}
	return domain.Players{Online: uint32(online), Max: uint32(limit)}, nil
}
