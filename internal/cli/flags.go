package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/config"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/spf13/pflag"
)

// ParseInterval parses a --interval value. Empty means "use the config".
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid interval: %s", flag),
			"Use a valid duration like 2s, 5s, or 1m")
	}
	if d < config.MinInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval too short",
			fmt.Sprintf("Minimum interval is %s to avoid overwhelming the manager", config.MinInterval))
	}
	return d, nil
}

// intervalValue is a --interval flag validated at parse time, so a bad
// value fails before any command runs. Zero means unset.
type intervalValue time.Duration

var _ pflag.Value = (*intervalValue)(nil)

func (v *intervalValue) String() string {
	if *v == 0 {
		return ""
	}
	return time.Duration(*v).String()
}

func (v *intervalValue) Set(s string) error {
	d, err := ParseInterval(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*v = intervalValue(d)
	return nil
}

func (v *intervalValue) Type() string {
	return "duration"
}

// ParseHeaders turns repeated --header name=value flags into a map.
// Later values win.
func ParseHeaders(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a valid header", f),
				"Use --header name=value, e.g. --header Accept-Language=en")
		}
		headers[name] = value
	}
	return headers, nil
}

// ParseAction parses one --action flag: a page method optionally followed by
// ":" and comma-separated name=value arguments, e.g.
//
//	click:selector=#accept
//	wait_for_timeout:timeout=500
//
// Values are typed the way the manager expects: integers, then floats,
// otherwise strings.
func ParseAction(flag string) (fleetapi.Action, error) {
	fn, rest, _ := strings.Cut(flag, ":")
	fn = strings.TrimSpace(fn)
	if fn == "" {
		return fleetapi.Action{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid action", flag),
			"Use --action func or --action func:name=value,...")
	}

	action := fleetapi.Action{Func: fn}
	if strings.TrimSpace(rest) == "" {
		return action, nil
	}

	for _, part := range strings.Split(rest, ",") {
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fleetapi.Action{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a valid action argument", part),
				"Arguments look like name=value, e.g. click:selector=#accept")
		}
		action.Args = append(action.Args, typedArgument(name, value))
	}
	return action, nil
}

func typedArgument(name, value string) fleetapi.ActionArgument {
	arg := fleetapi.ActionArgument{Name: name}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		arg.IntValue = &i
		return arg
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		arg.DoubleValue = &f
		return arg
	}
	arg.StringValue = &value
	return arg
}
