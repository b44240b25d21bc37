//go:build windows

package idle

func addPlatformSources(chain *Chain) {
	chain.sources = append(chain.sources, LastInputSource{})
}
