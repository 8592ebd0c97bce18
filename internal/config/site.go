package config

import (
	"fmt"
	"maps"
	"path"
	"strings"
)

// HostConfig holds the request state sent to an external host.
type HostConfig struct {
	// Cookie is an HTTP cookie sent with probes to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers included in probes to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .linkcheck configuration file.
type File struct {
	// Defaults is applied to every external host.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Hosts maps host names to overrides. An entry for "example.com" also
	// applies to its subdomains.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Ignore lists glob patterns matched against literal URLs. Matching
	// references are reported as skipped. "*" does not cross "/".
	Ignore []string `yaml:"ignore,omitempty"`

	// Concurrency overrides the default concurrency when positive.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Rate overrides the per-host request rate. Zero disables the limit.
	Rate *float64 `yaml:"rate,omitempty"`

	// Timeout is the per-request timeout in seconds when positive.
	Timeout int `yaml:"timeout,omitempty"`

	// UserAgent overrides the probe User-Agent when set.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Proxy is a SOCKS5 proxy address used for probes.
	Proxy string `yaml:"proxy,omitempty"`
}

// Validate reports malformed ignore patterns.
func (cf *File) Validate() error {
	for _, p := range cf.Ignore {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidIgnorePattern, p, err)
		}
	}
	if cf.Rate != nil && *cf.Rate < 0 {
		return ErrInvalidRate
	}
	return nil
}

// GetHostConfig returns the configuration for a host, merging the longest
// matching host entry over the defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := HostConfig{Cookie: cf.Defaults.Cookie, Headers: maps.Clone(cf.Defaults.Headers)}

	host = strings.ToLower(host)
	for name := host; name != ""; {
		if hc, ok := cf.lookup(name); ok {
			if hc.Cookie != "" {
				result.Cookie = hc.Cookie
			}
			if len(hc.Headers) > 0 {
				if result.Headers == nil {
					result.Headers = make(map[string]string, len(hc.Headers))
				}
				maps.Copy(result.Headers, hc.Headers)
			}
			break
		}
		_, rest, found := strings.Cut(name, ".")
		if !found {
			break
		}
		name = rest
	}

	return result
}

func (cf *File) lookup(host string) (HostConfig, bool) {
	for name, hc := range cf.Hosts {
		if strings.EqualFold(name, host) {
			return hc, true
		}
	}
	return HostConfig{}, false
}
