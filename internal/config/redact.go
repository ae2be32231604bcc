package config

import (
	"net/url"
	"slices"
)

// Redacted returns a copy safe to show: feed URLs keep their host and
// path, but passwords and query values (often API tokens) are masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Server.CORSOrigins = slices.Clone(c.Server.CORSOrigins)
	out.Feed.Sources = make([]FeedSource, len(c.Feed.Sources))
	for i, s := range c.Feed.Sources {
		out.Feed.Sources[i] = FeedSource{Name: s.Name, URL: redactURL(s.URL)}
	}
	return out
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskKey(raw)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k, vs := range q {
			for i := range vs {
				vs[i] = maskKey(vs[i])
			}
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
