package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type fieldKind int

const (
	fieldLine fieldKind = iota
	fieldMultiline
	fieldSecret
	fieldChoice
	fieldNumber
	fieldToggle
	fieldList
	fieldFile
)

type formMode int

const (
	formCreate formMode = iota
	formEdit
)

// fieldSpec declares one input: how it renders, how it validates, and
// how its value lands in the outgoing payload. Check runs only on
// non-empty values; Required handles emptiness.
type fieldSpec struct {
	Key      string
	Label    string
	Kind     fieldKind
	Required bool
	Choices  []string
	Check    func(string) error
	Hint     string
}

type schema struct {
	Fields []fieldSpec
}

type fieldError struct {
	Key     string
	Message string
}

func (e fieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

func (s schema) field(key string) (fieldSpec, bool) {
	for _, spec := range s.Fields {
		if spec.Key == key {
			return spec, true
		}
	}
	return fieldSpec{}, false
}

// validate applies the profile for mode. Create requires every Required
// field. Edit relaxes secrets only: an empty secret means "keep the
// stored one" and is skipped, never checked, never emitted.
func (s schema) validate(mode formMode, values map[string]string) []fieldError {
	var errs []fieldError
	for _, spec := range s.Fields {
		value := strings.TrimSpace(values[spec.Key])
		if value == "" {
			if spec.Kind == fieldSecret && mode == formEdit {
				continue
			}
			if spec.Required {
				errs = append(errs, fieldError{Key: spec.Key, Message: spec.Label + " is required"})
			}
			continue
		}
		if spec.Kind == fieldChoice && !containsChoice(spec.Choices, value) {
			errs = append(errs, fieldError{
				Key:     spec.Key,
				Message: fmt.Sprintf("%s must be one of %s", spec.Label, strings.Join(spec.Choices, ", ")),
			})
			continue
		}
		if spec.Check != nil {
			if err := spec.Check(value); err != nil {
				errs = append(errs, fieldError{Key: spec.Key, Message: fmt.Sprintf("%s %v", spec.Label, err)})
			}
		}
	}
	return errs
}

// payload builds the JSON body for the profile. Empty secrets in edit
// mode are omitted entirely so an update never overwrites a stored
// password with a blank. File fields never travel in JSON.
func (s schema) payload(mode formMode, values map[string]string) map[string]any {
	body := make(map[string]any)
	for _, spec := range s.Fields {
		value := strings.TrimSpace(values[spec.Key])
		switch spec.Kind {
		case fieldFile:
			continue
		case fieldSecret:
			if value == "" {
				continue
			}
			body[spec.Key] = value
		case fieldNumber:
			if value == "" {
				continue
			}
			if number, err := strconv.ParseFloat(value, 64); err == nil {
				body[spec.Key] = number
			}
		case fieldToggle:
			body[spec.Key] = toggleTrue(value)
		case fieldList:
			body[spec.Key] = splitList(value)
		default:
			if value == "" && mode == formEdit {
				continue
			}
			body[spec.Key] = value
		}
	}
	return body
}

// multipartPayload splits the same values into plain form fields and
// file attachments. List values are JSON encoded into their field.
func (s schema) multipartPayload(mode formMode, values map[string]string) (map[string]string, []filePart) {
	fields := make(map[string]string)
	var files []filePart
	for _, spec := range s.Fields {
		value := strings.TrimSpace(values[spec.Key])
		switch spec.Kind {
		case fieldFile:
			for _, path := range splitList(value) {
				files = append(files, filePart{Field: spec.Key, Path: path})
			}
		case fieldSecret:
			if value == "" {
				continue
			}
			fields[spec.Key] = value
		case fieldToggle:
			fields[spec.Key] = strconv.FormatBool(toggleTrue(value))
		case fieldList:
			if encoded, err := json.Marshal(splitList(value)); err == nil {
				fields[spec.Key] = string(encoded)
			}
		default:
			if value == "" && mode == formEdit {
				continue
			}
			fields[spec.Key] = value
		}
	}
	return fields, files
}

// hasFiles reports whether any file field carries a value, deciding
// JSON versus multipart submission.
func (s schema) hasFiles(values map[string]string) bool {
	for _, spec := range s.Fields {
		if spec.Kind == fieldFile && strings.TrimSpace(values[spec.Key]) != "" {
			return true
		}
	}
	return false
}

func containsChoice(choices []string, value string) bool {
	for _, choice := range choices {
		if strings.EqualFold(choice, value) {
			return true
		}
	}
	return false
}

func toggleTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "y", "1", "on":
		return true
	}
	return false
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func checkEmail(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return errors.New("must be a valid email address")
	}
	return nil
}

func checkMinLength(n int) func(string) error {
	return func(value string) error {
		if len(value) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

func checkURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("must be a valid URL")
	}
	return nil
}

func checkPositiveNumber(value string) error {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || number < 0 {
		return errors.New("must be a non-negative number")
	}
	return nil
}

func checkDate(value string) error {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"} {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return errors.New("must be a date like 2025-07-01")
}
