package llm

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const fence = "```"

var reFenceTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+-]*`)

// DecodeError reports structuring output for one document that yielded no
// usable records. It matches common.ErrDecode with errors.Is.
type DecodeError struct {
	FileName string
	Reason   string
	Cause    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode")
	if e.FileName != "" {
		b.WriteString(" ")
		b.WriteString(e.FileName)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool { return target == common.ErrDecode }

// WithFile returns err with the file name attached when it is a DecodeError.
func WithFile(err error, fileName string) error {
	var de *DecodeError
	if errors.As(err, &de) && de.FileName == "" {
		cp := *de
		cp.FileName = fileName
		return &cp
	}
	return err
}

// StripCodeFence removes a surrounding Markdown code fence and its language
// tag. Unfenced input is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	seg := strings.Split(s, fence)[1]
	if loc := reFenceTag.FindStringIndex(seg); loc != nil {
		seg = seg[loc[1]:]
	}
	return strings.TrimSpace(seg)
}

// DecodeProducts turns model output into product records. Elements that are
// not objects, or have no product name, are skipped. Output that is not a JSON
// array is a DecodeError.
func DecodeProducts(output string) ([]entity.ProductRecord, error) {
	cleaned := StripCodeFence(output)
	if cleaned == "" {
		return nil, &DecodeError{Reason: "empty output"}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Reason: "invalid json", Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Reason: "invalid json", Cause: errors.New("trailing data after value")}
	}

	items, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Reason: "not a sequence"}
	}

	records := make([]entity.ProductRecord, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec := recordFromMap(m)
		if rec.ProductName == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
