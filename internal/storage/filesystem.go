package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportPrefix is the file name stem shared by every report format
const ReportPrefix = "domain_validation_results"

// ReportPath generates a timestamped report path
// Format: {dir}/domain_validation_results_{YYYYMMDD-HHMMSS}.{ext}
func ReportPath(dir, ext string, at time.Time) string {
	name := fmt.Sprintf("%s_%s.%s", ReportPrefix, at.Format("20060102-150405"), ext)
	return filepath.Join(dir, name)
}

// ReadDomainList reads one domain per line. Lines are trimmed; blank lines
// and lines without a dot are dropped. A missing file wraps os.ErrNotExist.
func ReadDomainList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening domain list: %w", err)
	}
	defer f.Close()

	return ParseDomainList(f)
}

// ParseDomainList applies the ReadDomainList line rules to r. Lines have no
// length limit; an oversized entry is kept and left to domain validation.
func ParseDomainList(r io.Reader) ([]string, error) {
	var domains []string

	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if line := strings.TrimSpace(raw); line != "" && strings.Contains(line, ".") {
			domains = append(domains, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading domain list: %w", err)
		}
	}

	return domains, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
