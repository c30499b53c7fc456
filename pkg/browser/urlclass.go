package browser

import (
	"github.com/gobwas/glob"
)

var (
	extensionURLs = mustCompileAll("chrome-extension://*", "brave-extension://*")
	internalURLs  = mustCompileAll("about:*", "chrome:*")
)

func mustCompileAll(patterns ...string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p))
	}
	return globs
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// IsExtensionURL reports whether url belongs to a browser extension.
func IsExtensionURL(url string) bool {
	return matchAny(extensionURLs, url)
}

// IsInternalURL reports whether url is a blank or browser-internal page.
func IsInternalURL(url string) bool {
	return matchAny(internalURLs, url)
}

// IsRegularURL reports whether url is neither an extension nor an internal page.
func IsRegularURL(url string) bool {
	return !IsExtensionURL(url) && !IsInternalURL(url)
}
