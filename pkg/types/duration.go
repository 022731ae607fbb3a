package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var simpleDurationRegExp = regexp.MustCompile(`^(\d+)([hdw])$`)

var ErrNotSimpleDuration = errors.New("the given input is not simple duration format, valid format: [1-9][0-9]*[hdw]")

type SimpleDuration struct {
	Num      int
	Unit     string
	Duration Duration
}

func (d *SimpleDuration) String() string {
	return fmt.Sprintf("%d%s", d.Num, d.Unit)
}

func ParseSimpleDuration(s string) (*SimpleDuration, error) {
	if s == "" {
		return nil, nil
	}

	matches := simpleDurationRegExp.FindStringSubmatch(s)
	if matches == nil {
		return nil, errors.Wrapf(ErrNotSimpleDuration, "input %q is not a simple duration", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, err
	}

	unit := matches[2]
	switch unit {
	case "d":
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * 24 * time.Hour)}, nil
	case "w":
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * 7 * 24 * time.Hour)}, nil
	case "h":
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * time.Hour)}, nil
	}

	return nil, errors.Wrapf(ErrNotSimpleDuration, "input %q is not a simple duration", s)
}

// Duration accepts the simple day/week notation ("134d", "2w") besides the Go duration syntax.
type Duration time.Duration

func ParseDuration(s string) (Duration, error) {
	if sd, err := ParseSimpleDuration(s); err == nil && sd != nil {
		return sd.Duration, nil
	}

	dd, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return Duration(dd), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	dd := time.Duration(d)
	if dd > 0 && dd%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", dd/(24*time.Hour))
	}
	return dd.String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var o interface{}

	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}

	switch t := o.(type) {
	case string:
		dd, err := ParseDuration(t)
		if err != nil {
			return err
		}
		*d = dd

	case float64:
		*d = Duration(int64(t * float64(time.Second)))

	default:
		return fmt.Errorf("unsupported type %T value: %v", t, t)

	}

	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!int", "!!float":
		var seconds float64
		if err := node.Decode(&seconds); err != nil {
			return err
		}
		*d = Duration(int64(seconds * float64(time.Second)))
		return nil
	}

	dd, err := ParseDuration(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*d = dd
	return nil
}
