package config

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// StringSlice accepts a list, a single string or a comma separated string.
type StringSlice []string

func (s *StringSlice) decode(a interface{}) error {
	switch d := a.(type) {
	case string:
		for _, part := range strings.Split(d, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*s = append(*s, part)
			}
		}

	case []string:
		*s = append(*s, d...)

	case []interface{}:
		for _, de := range d {
			if err := s.decode(de); err != nil {
				return err
			}
		}

	default:
		return errors.Errorf("unexpected type %T for StringSlice: %+v", d, d)
	}

	return nil
}

func (s *StringSlice) UnmarshalYAML(unmarshal func(interface{}) error) (err error) {
	var a interface{}
	if err = unmarshal(&a); err != nil {
		return err
	}

	*s = nil
	return s.decode(a)
}

func (s *StringSlice) UnmarshalJSON(b []byte) error {
	var a interface{}
	var err = json.Unmarshal(b, &a)
	if err != nil {
		return err
	}

	*s = nil
	return s.decode(a)
}
