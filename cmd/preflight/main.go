// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/hamed0406/statusbot/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
		os.Exit(1)
	}
	ok("loaded " + path)

	if err := config.Validate(cfg); err != nil {
		for _, e := range multierr.Errors(err) {
			fail(e.Error())
		}
		os.Exit(1)
	}
	config.Normalize(cfg)

	for _, w := range config.Warnings(cfg) {
		warn(w)
	}

	ok(fmt.Sprintf("target %s:%d (%s)", cfg.Minecraft.IP, cfg.Minecraft.Port, cfg.Minecraft.Edition))
	ok(fmt.Sprintf("channel %d, every %s", cfg.Discord.ChannelID, cfg.PollInterval()))
	if cfg.HTTP.Addr == "" {
		warn("http.addr empty; /healthz and /metrics are disabled")
	} else {
		ok("http.addr=" + cfg.HTTP.Addr)
	}

	ok("preflight passed")
}
