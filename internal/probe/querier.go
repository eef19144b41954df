package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/hamed0406/statusbot/internal/domain"
)

const (
	EditionJava    = "java"
	EditionBedrock = "bedrock"
	EditionRCON    = "rcon"
)

// Querier asks a game server for its player counts. Implementations must
// honour the context deadline where the underlying transport allows it.
type Querier interface {
	Query(ctx context.Context, host string, port uint16) (domain.Players, error)
}

type QuerierFunc func(ctx context.Context, host string, port uint16) (domain.Players, error)

func (f QuerierFunc) Query(ctx context.Context, host string, port uint16) (domain.Players, error) {
	return f(ctx, host, port)
}

// NewQuerier returns the query collaborator for the given server edition.
func NewQuerier(edition, rconPassword string) (Querier, error) {
	switch strings.ToLower(strings.TrimSpace(edition)) {
	case "", EditionJava:
		return NewJava(), nil
	case EditionBedrock:
		return NewBedrock(), nil
	case EditionRCON:
		return NewRCON(rconPassword), nil
	default:
		return nil, fmt.Errorf("unknown edition %q", edition)
	}
}
