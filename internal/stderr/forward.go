package stderr

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// forward logs each non-blank line read from r until EOF.
func forward(r io.Reader, log zerolog.Logger) {
	log = log.With().Str("source", "stderr").Logger()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			log.Warn().Msg(line)
		}
	}
}
