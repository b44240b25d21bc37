//go:build !linux && !darwin && !windows

package idle

func addPlatformSources(chain *Chain) {
	addTmux(chain)
}
