package backend

import "strings"

// ConnInfo describes how to reach the credential database. Connect, when
// set, is a complete connection string and wins over the discrete fields.
type ConnInfo struct {
	Connect        string
	Database       string
	Host           string
	Port           string
	ConnectTimeout string
	User           string
	Password       string
	SSLMode        string
}

// String renders a libpq key/value connection string. Both pgx and lib/pq
// accept this form.
func (c ConnInfo) String() string {
	if c.Connect != "" {
		return c.Connect
	}

	pairs := []struct{ key, value string }{
		{"dbname", c.Database},
		{"host", c.Host},
		{"port", c.Port},
		{"connect_timeout", c.ConnectTimeout},
		{"user", c.User},
		{"password", c.Password},
		{"sslmode", c.SSLMode},
	}

	var parts []string
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+quoteValue(p.value))
	}
	return strings.Join(parts, " ")
}

// quoteValue applies libpq quoting to values with spaces, quotes or
// backslashes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, " '\\\t") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
