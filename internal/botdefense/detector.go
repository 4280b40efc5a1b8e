package botdefense

import "strings"

// fragments that only show up in exploit probes, never in links the site emits
var suspiciousPatterns = []string{
	".php",
	".asp",
	".aspx",
	".jsp",
	".cgi",
	"..%2f",
	"../",
	"%00",
	"<script",
	"union+select",
	"' or '",
}

// checks if the request path looks like probing
func IsSuspiciousPath(path string) bool {
	lower := strings.ToLower(path)

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}
