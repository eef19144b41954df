package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Renamer sets the display name of a channel on the chat platform.
type Renamer interface {
	Rename(ctx context.Context, channelID uint64, name string) error
}

// Updater pushes a display name to the configured channel. It makes exactly
// one write per call and reports failure without retrying.
type Updater struct {
	Logger    *zap.Logger
	Renamer   Renamer
	ChannelID uint64
}

func NewUpdater(logger *zap.Logger, r Renamer, channelID uint64) *Updater {
	return &Updater{Logger: logger, Renamer: r, ChannelID: channelID}
}

func (u *Updater) Update(ctx context.Context, name string) error {
	if err := u.Renamer.Rename(ctx, u.ChannelID, name); err != nil {
		u.Logger.Warn("channel_update_failed",
			zap.Uint64("channel_id", u.ChannelID),
			zap.String("name", name),
			zap.Error(err),
		)
		return fmt.Errorf("rename channel %d: %w", u.ChannelID, err)
	}
	u.Logger.Info("channel_updated",
		zap.Uint64("channel_id", u.ChannelID),
		zap.String("name", name),
	)
	return nil
}
