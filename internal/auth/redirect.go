package auth

import (
	"net/url"
	"strings"
)

// authPages are never a destination after signing in.
var authPages = []string{
	"/login",
	"/signup",
	"/verify-email",
	"/verify-email-sent",
	"/auth/verify-success",
	"/auth/verify-error",
}

// SafeRedirect returns path when it is a local page worth returning to, and "/"
// otherwise.
func SafeRedirect(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	for _, page := range authPages {
		if strings.HasPrefix(path, page) {
			return "/"
		}
	}
	return path
}
