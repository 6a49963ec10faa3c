package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeBody strips script elements from a post body before upload.
func sanitizeBody(body string) string {
	return scriptTagPattern.ReplaceAllString(body, "")
}
