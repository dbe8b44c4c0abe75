package httpserver

import (
	"os"
	"strings"
)

func envOrigins() string {
	return strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
}
