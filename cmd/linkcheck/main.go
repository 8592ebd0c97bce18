// Package main provides the entry point for the linkcheck CLI.
//
// linkcheck validates every link, image, stylesheet and script reference
// of a static HTML file: local paths and anchors are resolved on disk,
// http and https targets are probed over the network.
//
// Usage:
//
//	linkcheck check site/index.html
//	linkcheck check --no-external --json site/index.html
//
// See --help for all available options.
package main

func main() {
	Execute()
}
