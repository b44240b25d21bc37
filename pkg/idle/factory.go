package idle

import "github.com/rs/zerolog"

// NewPlatformSource builds the idle source chain for this platform. The
// system mechanisms that are usable here come first and activity is always
// last, so the chain never runs out of sources.
//
//   - linux: mutter, screensaver (session bus), xprintidle, tmux
//   - darwin: ioreg, tmux
//   - windows: GetLastInputInfo
//   - others: tmux
//
// Close the chain to release any bus connection it opened.
func NewPlatformSource(log zerolog.Logger, activity *ActivityTracker) *Chain {
	chain := NewChain(log)
	addPlatformSources(chain)
	chain.sources = append(chain.sources, activity)
	chain.log.Debug().Strs("sources", chain.Sources()).Msg("idle sources configured")
	return chain
}

func addTmux(chain *Chain) {
	if tmux := NewTmuxSource(""); tmux.IsAvailable() {
		chain.sources = append(chain.sources, tmux)
	}
}
