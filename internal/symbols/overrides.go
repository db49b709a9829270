package symbols

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ParseOverrides reads a mapping of broker tickers to canonical pairs
// from file contents. Two formats are accepted: a JSON object of string
// pairs, or plain lines of "TICKER: PAIR" with # comments and blank
// lines ignored.
func ParseOverrides(data []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		overrides := make(map[string]string)
		if err := json.Unmarshal(trimmed, &overrides); err != nil {
			return nil, fmt.Errorf("parse overrides json: %w", err)
		}
		return overrides, nil
	}

	overrides := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ticker, pair, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("overrides line %d: want \"TICKER: PAIR\", got %q", lineNo, line)
		}
		ticker = strings.TrimSpace(ticker)
		pair = strings.TrimSpace(pair)
		if ticker == "" || pair == "" {
			return nil, fmt.Errorf("overrides line %d: empty ticker or pair in %q", lineNo, line)
		}
		overrides[ticker] = pair
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return overrides, nil
}

// LoadOverridesFile reads overrides from path. A missing file is not an
// error: the translator simply runs on derivation alone.
func LoadOverridesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	return ParseOverrides(data)
}
