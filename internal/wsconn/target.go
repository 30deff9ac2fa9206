package wsconn

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidScheme is reported when the resolved target is not ws:// or wss://.
var ErrInvalidScheme = errors.New("websocket target must use ws or wss")

// SessionPath is the game endpoint below the server's /ws prefix.
const SessionPath = "/ws/game"

var (
	httpPrefix  = regexp.MustCompile(`(?i)^http`)
	httpScheme  = regexp.MustCompile(`(?i)^https?://`)
	wssRepeated = regexp.MustCompile(`(?i)^wss+://`)
	wsScheme    = regexp.MustCompile(`(?i)^wss?://`)
)

// NormalizeBase trims the base URL, maps http(s) to ws(s), repairs "wsss://"
// style typos and strips trailing slashes.
func NormalizeBase(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if httpScheme.MatchString(s) {
		s = httpPrefix.ReplaceAllString(s, "ws")
	}
	s = wssRepeated.ReplaceAllString(s, "wss://")
	return strings.TrimRight(s, "/")
}

// ResolveTarget builds the game endpoint for base with the bearer token as a
// query parameter. A base that already ends in /ws is not doubled.
// The target is returned even on ErrInvalidScheme so callers can log it.
func ResolveTarget(base, token string) (string, error) {
	s := NormalizeBase(base)
	q := "?token=" + url.QueryEscape(token)
	var target string
	if strings.HasSuffix(s, "/ws") {
		target = s + "/game" + q
	} else {
		target = s + SessionPath + q
	}
	if !wsScheme.MatchString(target) {
		return target, fmt.Errorf("%w: %q", ErrInvalidScheme, base)
	}
	return target, nil
}
