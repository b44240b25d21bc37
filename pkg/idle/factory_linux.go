//go:build linux

package idle

import (
	"os"
	"os/exec"

	"github.com/godbus/dbus/v5"
)

func addPlatformSources(chain *Chain) {
	// Without an explicit address godbus may try to autolaunch a bus.
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			chain.log.Debug().Err(err).Msg("session bus unavailable")
		} else {
			chain.sources = append(chain.sources, NewMutterSource(conn), NewScreenSaverSource(conn))
			chain.closeWith(conn)
		}
	}

	if os.Getenv("DISPLAY") != "" {
		if _, err := exec.LookPath("xprintidle"); err == nil {
			chain.sources = append(chain.sources, NewXprintidleSource())
		}
	}

	addTmux(chain)
}
