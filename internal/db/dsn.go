package db

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	kvPassword    = regexp.MustCompile(`(?i)(password=)(\S+)`)
	postgresNames = []string{"postgres://", "postgresql://"}
)

func isURLDSN(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range postgresNames {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a lib/pq
// key=value list. Quotes and extra whitespace are trimmed and a key=value
// list without sslmode gets sslmode=disable.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" || isURLDSN(s) || !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// ToURLDSN converts a key=value DSN to URL form, as golang-migrate expects.
// Input that is already a URL, or lacks host/user/dbname, is returned as is.
func ToURLDSN(kvDSN string) string {
	if kvDSN == "" || isURLDSN(kvDSN) {
		return kvDSN
	}
	m := map[string]string{}
	for _, part := range strings.Fields(kvDSN) {
		if k, v, ok := strings.Cut(part, "="); ok {
			m[strings.ToLower(k)] = v
		}
	}
	host, user, dbname := m["host"], m["user"], m["dbname"]
	if host == "" || user == "" || dbname == "" {
		return kvDSN
	}
	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + dbname}
	if port := m["port"]; port != "" {
		u.Host = host + ":" + port
	}
	if pass := m["password"]; pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	if sslm, ok := m["sslmode"]; ok {
		u.RawQuery = url.Values{"sslmode": {sslm}}.Encode()
	}
	return u.String()
}

// MaskDSN hides the password of either DSN form, for logging.
func MaskDSN(dsn string) string {
	if isURLDSN(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "***"
		}
		if _, ok := u.User.Password(); !ok {
			return u.String()
		}
		// url.String would percent-encode the mask itself.
		u.User = url.UserPassword(u.User.Username(), "MASKED")
		return strings.Replace(u.String(), ":MASKED@", ":***@", 1)
	}
	return kvPassword.ReplaceAllString(dsn, `${1}***`)
}
