// Package curl converts between records and curl command lines.
package curl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/reqtabs/internal/core"
)

var (
	// ErrNotCurl is returned when the input does not start with curl.
	ErrNotCurl = errors.New("not a curl command")
	// ErrNoURL is returned when no URL argument was found.
	ErrNoURL = errors.New("no URL found in curl command")
)

// IsCommand reports whether s looks like a curl invocation.
func IsCommand(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "curl ") || strings.HasPrefix(trimmed, "curl\t")
}

// Parse turns a curl command line into a new record named after the
// last URL path segment.
func Parse(cmd string) (*core.Record, error) {
	p, err := parse(cmd)
	if err != nil {
		return nil, err
	}
	rec := core.NewRecord(nameFromURL(p.url), p.method, "")
	p.applyTo(rec)
	return rec, nil
}

// Apply overwrites the method, URL, headers and body of rec with the
// parsed command, keeping its id and name.
func Apply(rec *core.Record, cmd string) error {
	p, err := parse(cmd)
	if err != nil {
		return err
	}
	for _, k := range rec.HeaderKeys() {
		rec.RemoveHeader(k)
	}
	for _, k := range rec.QueryKeys() {
		rec.RemoveQueryParam(k)
	}
	rec.SetMethod(p.method)
	rec.SetBody("")
	rec.SetBodyType(core.BodyTypeRaw)
	p.applyTo(rec)
	return nil
}

type parsed struct {
	method  string
	url     string
	headers map[string]string
	body    string
	json    bool
}

func (p *parsed) applyTo(rec *core.Record) {
	rec.SetURL(p.url)
	for k, v := range p.headers {
		rec.SetHeader(k, v)
	}
	if p.body != "" {
		rec.SetBody(p.body)
		if p.json || strings.Contains(p.headers["Content-Type"], "json") {
			rec.SetBodyType(core.BodyTypeJSON)
		}
	}
}

// takesValue lists flags whose value is skipped.
var takesValue = map[string]bool{
	"-o": true, "--output": true,
	"-m": true, "--max-time": true,
	"--connect-timeout": true,
	"-w": true, "--write-out": true,
	"-x": true, "--proxy": true,
}

func parse(cmd string) (*parsed, error) {
	result := &parsed{
		method:  "GET",
		headers: make(map[string]string),
	}

	cmd = strings.ReplaceAll(cmd, "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	tokens := tokenize(strings.TrimSpace(cmd))
	if len(tokens) == 0 || tokens[0] != "curl" {
		return nil, ErrNotCurl
	}

	explicitMethod := false
	next := func(i int) (string, bool) {
		if i+1 < len(tokens) {
			return tokens[i+1], true
		}
		return "", false
	}
	impliesPost := func() {
		if !explicitMethod {
			result.method = "POST"
		}
	}

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			if v, ok := next(i); ok {
				result.method = strings.ToUpper(v)
				explicitMethod = true
				i++
			}

		case "-H", "--header":
			if v, ok := next(i); ok {
				if idx := strings.Index(v, ":"); idx > 0 {
					result.headers[strings.TrimSpace(v[:idx])] = strings.TrimSpace(v[idx+1:])
				}
				i++
			}

		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			if v, ok := next(i); ok {
				result.body = v
				impliesPost()
				i++
			}

		case "--data-urlencode":
			if v, ok := next(i); ok {
				if result.body != "" {
					result.body += "&"
				}
				result.body += v
				impliesPost()
				i++
			}

		case "--json":
			if v, ok := next(i); ok {
				result.body = v
				result.json = true
				result.headers["Content-Type"] = "application/json"
				result.headers["Accept"] = "application/json"
				impliesPost()
				i++
			}

		case "-u", "--user":
			if v, ok := next(i); ok {
				result.headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(v))
				i++
			}

		case "-A", "--user-agent":
			if v, ok := next(i); ok {
				result.headers["User-Agent"] = v
				i++
			}

		case "-e", "--referer":
			if v, ok := next(i); ok {
				result.headers["Referer"] = v
				i++
			}

		case "-b", "--cookie":
			if v, ok := next(i); ok {
				result.headers["Cookie"] = v
				i++
			}

		case "--compressed":
			result.headers["Accept-Encoding"] = "gzip, deflate, br"

		case "-I", "--head":
			result.method = "HEAD"
			explicitMethod = true

		case "-G", "--get":
			result.method = "GET"
			explicitMethod = true

		case "--url":
			if v, ok := next(i); ok {
				result.url = v
				i++
			}

		default:
			if takesValue[token] {
				i++
				continue
			}
			if strings.HasPrefix(token, "-") {
				continue
			}
			if result.url == "" {
				result.url = token
			}
		}
	}

	if result.url == "" {
		return nil, ErrNoURL
	}
	return result, nil
}

// tokenize splits the command respecting single and double quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	var inQuote rune
	var escaped bool
	started := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' && inQuote != '\'' {
			escaped = true
			started = true
			continue
		}
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}
		if r == '"' || r == '\'' {
			inQuote = r
			started = true
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
			continue
		}
		current.WriteRune(r)
		started = true
	}

	if started {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func nameFromURL(rawURL string) string {
	name := rawURL
	if idx := strings.Index(name, "://"); idx >= 0 {
		name = name[idx+3:]
	}
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}

	if idx := strings.Index(name, "/"); idx >= 0 {
		segments := strings.Split(strings.Trim(name[idx:], "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			return last
		}
		name = name[:idx]
	}
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return fmt.Sprintf("curl %s", rawURL)
	}
	return name
}
