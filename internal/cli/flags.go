package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// categoryFlag accepts one of the task categories.
type categoryFlag struct{ value *domain.Category }

func (f categoryFlag) String() string {
	if f.value == nil {
		return ""
	}
	return string(*f.value)
}

func (f categoryFlag) Set(s string) error {
	c, err := domain.ParseCategory(s)
	if err != nil {
		return err
	}
	*f.value = c
	return nil
}

func (categoryFlag) Type() string { return "category" }

// priorityFlag accepts an integer in [MinPriority, MaxPriority].
type priorityFlag struct{ value *int }

func (f priorityFlag) String() string {
	if f.value == nil {
		return ""
	}
	return strconv.Itoa(*f.value)
}

func (f priorityFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < domain.MinPriority || n > domain.MaxPriority {
		return fmt.Errorf("priority must be an integer from %d to %d", domain.MinPriority, domain.MaxPriority)
	}
	*f.value = n
	return nil
}

func (priorityFlag) Type() string { return "1-10" }

// dateFlag parses YYYY-MM-DD in a fixed zone; unset stays zero.
type dateFlag struct {
	value *time.Time
	loc   *time.Location
}

func (f dateFlag) String() string {
	if f.value == nil || f.value.IsZero() {
		return ""
	}
	return f.value.Format(time.DateOnly)
}

func (f dateFlag) Set(s string) error {
	loc := f.loc
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	*f.value = t
	return nil
}

func (dateFlag) Type() string { return "date" }

// onTimeFlag accepts yes/no and true/false spellings.
type onTimeFlag struct{ value *domain.DoneOnTime }

func (f onTimeFlag) String() string {
	if f.value == nil {
		return ""
	}
	return string(*f.value)
}

func (f onTimeFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "yes", "y", "true":
		*f.value = domain.DoneOnTimeYes
	case "no", "n", "false":
		*f.value = domain.DoneOnTimeNo
	default:
		return fmt.Errorf("expected yes or no, got %q", s)
	}
	return nil
}

func (onTimeFlag) Type() string { return "yes|no" }

var (
	_ pflag.Value = categoryFlag{}
	_ pflag.Value = priorityFlag{}
	_ pflag.Value = dateFlag{}
	_ pflag.Value = onTimeFlag{}
)

// parseID reads a positive task or goal id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
