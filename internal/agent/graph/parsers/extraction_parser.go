package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/label-minter/server/internal/agent/model"
	errx "github.com/label-minter/server/internal/core/error"
	logx "github.com/label-minter/server/pkg/logger"
)

// basic safety limits to avoid pathological model output
const (
	maxContentLen = 64 * 1024 // 64KB
	maxFieldLen   = 4 * 1024  // 4KB per extracted value
	maxErrSnippet = 200
)

// recipientPattern accepts 0x-prefixed Starknet felts (and shorter EVM addresses).
var recipientPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// IsRecipientAddress reports whether s looks like a chain address.
func IsRecipientAddress(s string) bool {
	return recipientPattern.MatchString(strings.TrimSpace(s))
}

// ParseExtraction interprets the extraction model reply. Missing, null,
// blank, or non-string fields mean "no information"; unknown keys are
// ignored. A reply without any JSON object is an error.
func ParseExtraction(content string) (out model.LabelExtraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "extraction_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("extraction parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			out = model.LabelExtraction{}
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "extraction_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	raw, ok := findJSONObject(content)
	if !ok {
		if strings.TrimSpace(content) == "" {
			return model.LabelExtraction{}, nil
		}
		return model.LabelExtraction{}, fmt.Errorf("no json object in extraction output: %q", safeSnippet(content))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.LabelExtraction{}, fmt.Errorf("decode extraction output: %w", err)
	}

	out = model.LabelExtraction{
		Name:        stringField(fields, model.FieldName),
		Description: stringField(fields, model.FieldDescription),
		Recipient:   stringField(fields, model.FieldRecipient),
	}
	if out.Recipient != "" && !IsRecipientAddress(out.Recipient) {
		logx.Debug().
			Str("component", "extraction_parser").
			Str("recipient", safeSnippet(out.Recipient)).
			Msg("dropping recipient that is not a chain address")
		out.Recipient = ""
	}
	return out, nil
}

func stringField(fields map[string]any, f model.LabelField) string {
	v, ok := fields[f.Key()].(string)
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	if !utf8.ValidString(v) || len(v) > maxFieldLen {
		return ""
	}
	return v
}

// findJSONObject returns the first balanced {...} in s, skipping code fences
// and surrounding prose. Braces inside JSON strings are honoured.
func findJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					i = len(s)
				}
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
