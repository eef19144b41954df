package channel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type channelEditor interface {
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Discord renames guild channels through the REST API.
type Discord struct {
	api channelEditor
}

func (d *Discord) Rename(ctx context.Context, channelID uint64, name string) error {
	_, err := d.api.ChannelEdit(
		strconv.FormatUint(channelID, 10),
		&discordgo.ChannelEdit{Name: name},
		discordgo.WithContext(ctx),
	)
	return err
}

// Session is the long-lived gateway connection. It is opened once at startup
// and closed on shutdown; cycles only borrow it through Renamer.
type Session struct {
	Logger   *zap.Logger
	Activity string
	dg       *discordgo.Session
}

func NewSession(logger *zap.Logger, token, activity string) (*Session, error) {
	if token == "" {
		return nil, errors.New("discord token is empty")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	// Renaming a channel needs no gateway events.
	dg.Identify.Intents = 0
	return &Session{Logger: logger, Activity: activity, dg: dg}, nil
}

// Start opens the gateway. The presence is re-applied on every Ready because
// reconnects reset it; ready itself runs only for the first one.
func (s *Session) Start(ready func()) error {
	s.dg.AddHandler(func(dg *discordgo.Session, r *discordgo.Ready) {
		user := ""
		if r.User != nil {
			user = r.User.Username
		}
		s.Logger.Info("discord_ready", zap.String("user", user), zap.String("activity", s.Activity))
		if err := dg.UpdateGameStatus(0, s.Activity); err != nil {
			s.Logger.Warn("discord_presence_failed", zap.Error(err))
		}
	})
	s.dg.AddHandlerOnce(func(*discordgo.Session, *discordgo.Ready) {
		ready()
	})

	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

func (s *Session) Renamer() *Discord {
	return &Discord{api: s.dg}
}

func (s *Session) Close() error {
	return s.dg.Close()
}
