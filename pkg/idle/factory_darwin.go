//go:build darwin

package idle

func addPlatformSources(chain *Chain) {
	chain.sources = append(chain.sources, NewIoregSource())
	addTmux(chain)
}
