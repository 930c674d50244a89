package bethdir

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadLoadOrder reads the ordered list of enabled plugins from a load order
// file, one plugin per line, earliest to latest. Blank lines and lines
// starting with '#' are skipped. When trimExtension is set, each entry is
// truncated at its last '.' (entries without a dot are kept as-is). An empty
// result is valid.
func ReadLoadOrder(path string, trimExtension bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open load order: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}

		if trimExtension {
			if i := strings.LastIndexByte(line, '.'); i >= 0 {
				line = line[:i]
			}
		}

		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read load order: %w", err)
	}

	return out, nil
}
