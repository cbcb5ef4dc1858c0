package policy

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/always-cache/accelerator/header"
)

// Response is a response served from the cache.
type Response struct {
	Status string
	Header header.Fields
	Body   [][]byte
}

// StatusLine returns the status line for code, e.g. "200 OK".
func StatusLine(code int) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s", code, http.StatusText(code)))
}

// StatusCode returns the numeric code a status line starts with.
func StatusCode(line string) (int, error) {
	code, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	c, err := strconv.Atoi(code)
	if err != nil || c < 100 || c > 999 {
		return 0, fmt.Errorf("invalid status line %q", line)
	}
	return c, nil
}
