package app

import (
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
)

const (
	SessionHeader = "X-Session-ID"
	sessionField  = "session_id"

	multipartMemory = 8 << 20
)

// fields gives uniform access to a form, multipart or JSON request body.
type fields struct {
	form      url.Values
	json      map[string]any
	multipart bool
}

func readFields(r *http.Request) (*fields, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		f := &fields{json: map[string]any{}}
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&f.json); err != nil {
			if isBodyTooLarge(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: malformed JSON body: %v", advisor.ErrValidation, err)
		}
		return f, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, fmt.Errorf("read multipart form: %w", err)
		}
		return &fields{form: r.Form, multipart: true}, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("read form: %w", err)
		}
		return &fields{form: r.Form}, nil
	}
}

// str returns the field as text; numbers and booleans in JSON are formatted.
func (f *fields) str(key string) string {
	if f.json == nil {
		return strings.TrimSpace(f.form.Get(key))
	}
	switch v := f.json[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (f *fields) strOr(key, def string) string {
	if s := f.str(key); s != "" {
		return s
	}
	return def
}

// num parses a numeric field, accepting JSON numbers or numeric strings.
// Missing or empty fields take def; NaN and infinities are rejected.
func (f *fields) num(key string, def float64) (float64, error) {
	if f.json != nil {
		if v, ok := f.json[key].(float64); ok {
			return v, nil
		}
	}
	s := f.str(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s to number: %q", key, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number, got %q", advisor.ErrValidation, key, s)
	}
	return v, nil
}

// recommendations reads an optional [{crop, score}] list, either a JSON
// array or, in forms, its JSON encoding.
func (f *fields) recommendations(key string) ([]model.SuitabilityEntry, error) {
	var raw []byte
	if f.json != nil {
		v, ok := f.json[key]
		if !ok || v == nil {
			return nil, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	} else {
		s := f.str(key)
		if s == "" {
			return nil, nil
		}
		raw = []byte(s)
	}
	var out []model.SuitabilityEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s must be a list of {crop, score}", advisor.ErrValidation, key)
	}
	return out, nil
}

// sessionID prefers the header over the body field.
func (f *fields) sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return f.str(sessionField)
}
