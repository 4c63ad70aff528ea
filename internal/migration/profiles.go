package migration

import (
	"net/url"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

// flatProfileKeys are single-URL link fields that older editors stored outside
// the profile list, in synthesis order.
var flatProfileKeys = []string{"linkedin", "github", "twitter"}

var flatProfileBase = map[string]string{
	"linkedin": "https://www.linkedin.com/in/",
	"github":   "https://github.com/",
	"twitter":  "https://twitter.com/",
}

var knownNetworks = []struct {
	host    string
	network string
}{
	{"linkedin.com", "LinkedIn"},
	{"github.com", "GitHub"},
	{"gitlab.com", "GitLab"},
	{"twitter.com", "Twitter"},
	{"x.com", "X"},
	{"stackoverflow.com", "Stack Overflow"},
	{"medium.com", "Medium"},
	{"dribbble.com", "Dribbble"},
	{"behance.net", "Behance"},
	{"facebook.com", "Facebook"},
	{"instagram.com", "Instagram"},
	{"youtube.com", "YouTube"},
}

// normalizeProfiles fills missing network/username on listed profiles and
// synthesizes profiles from flat link fields that are not already listed.
func normalizeProfiles(basics map[string]any) []types.Profile {
	items := objList(basics["profiles"])
	profiles := make([]types.Profile, 0, len(items)+len(flatProfileKeys))
	for _, item := range items {
		p := types.Profile{
			Network:  field(item, "network"),
			Username: field(item, "username"),
			URL:      field(item, "url"),
		}
		if p.URL != "" && (p.Network == "" || p.Username == "") {
			derived := profileFromURL(p.URL)
			if p.Network == "" {
				p.Network = derived.Network
			}
			if p.Username == "" {
				p.Username = derived.Username
			}
		}
		profiles = append(profiles, p)
	}

	for _, key := range flatProfileKeys {
		value := str(basics[key])
		if value == "" {
			continue
		}
		p := profileFromFlat(key, value)
		if hasProfile(profiles, p) {
			continue
		}
		profiles = append(profiles, p)
	}

	return profiles
}

// profileFromFlat builds a profile from a flat link field. Bare handles are
// expanded to the network's canonical URL.
func profileFromFlat(key, value string) types.Profile {
	if !strings.ContainsAny(value, "/.") {
		handle := strings.TrimPrefix(value, "@")
		return types.Profile{
			Network:  networkForKey(key),
			Username: handle,
			URL:      flatProfileBase[key] + handle,
		}
	}
	p := profileFromURL(value)
	if p.Network == "" || !isKnownHost(p.URL) {
		p.Network = networkForKey(key)
	}
	return p
}

// profileFromURL derives a username from the last path segment and the
// network name from the host.
func profileFromURL(raw string) types.Profile {
	parsed, err := parseLooseURL(raw)
	if err != nil {
		return types.Profile{URL: raw}
	}
	return types.Profile{
		Network:  networkForHost(hostOf(parsed)),
		Username: lastPathSegment(parsed.Path),
		URL:      raw,
	}
}

func parseLooseURL(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return url.Parse(raw)
}

func hostOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func networkForHost(host string) string {
	if host == "" {
		return ""
	}
	for _, known := range knownNetworks {
		if host == known.host || strings.HasSuffix(host, "."+known.host) {
			return known.network
		}
	}
	labels := strings.Split(host, ".")
	name := labels[0]
	if len(labels) >= 2 {
		name = labels[len(labels)-2]
	}
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isKnownHost(raw string) bool {
	parsed, err := parseLooseURL(raw)
	if err != nil {
		return false
	}
	host := hostOf(parsed)
	for _, known := range knownNetworks {
		if host == known.host || strings.HasSuffix(host, "."+known.host) {
			return true
		}
	}
	return false
}

func networkForKey(key string) string {
	switch key {
	case "linkedin":
		return "LinkedIn"
	case "github":
		return "GitHub"
	case "twitter":
		return "Twitter"
	default:
		return key
	}
}

func lastPathSegment(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimPrefix(segments[i], "@"); s != "" {
			return s
		}
	}
	return ""
}

func hasProfile(profiles []types.Profile, p types.Profile) bool {
	for _, existing := range profiles {
		if existing.Network != "" && strings.EqualFold(existing.Network, p.Network) {
			return true
		}
		if existing.URL != "" && canonicalURL(existing.URL) == canonicalURL(p.URL) {
			return true
		}
	}
	return false
}

func canonicalURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}
