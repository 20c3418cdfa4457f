package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Condition errors.
var (
	ErrInvalidCondition = errors.New("invalid condition")
	ErrUnknownActivity  = errors.New("unknown activity")
)

// ConditionKind identifies the predicate a Condition describes.
type ConditionKind uint8

const (
	// ConditionHeadphones is true while the headphone state matches Value
	// (1 = plugged in, 0 = unplugged).
	ConditionHeadphones ConditionKind = 1

	// ConditionActivity is true while the detected activity equals Value.
	ConditionActivity ConditionKind = 2

	// ConditionFlag is true while the service-side flag Key is set.
	ConditionFlag ConditionKind = 3

	// ConditionAnd is true while all Children are true.
	ConditionAnd ConditionKind = 4

	// ConditionOr is true while any child is true.
	ConditionOr ConditionKind = 5

	// ConditionNot negates its single child.
	ConditionNot ConditionKind = 6
)

// String returns the kind name.
func (k ConditionKind) String() string {
	switch k {
	case ConditionHeadphones:
		return "headphones"
	case ConditionActivity:
		return "activity"
	case ConditionFlag:
		return "flag"
	case ConditionAnd:
		return "and"
	case ConditionOr:
		return "or"
	case ConditionNot:
		return "not"
	default:
		return "unknown"
	}
}

// ActivityType classifies user motion.
type ActivityType uint8

const (
	ActivityInVehicle ActivityType = 0
	ActivityOnBicycle ActivityType = 1
	ActivityOnFoot    ActivityType = 2
	ActivityStill     ActivityType = 3
	ActivityUnknown   ActivityType = 4
	ActivityTilting   ActivityType = 5
	ActivityWalking   ActivityType = 7
	ActivityRunning   ActivityType = 8
)

var activityNames = map[ActivityType]string{
	ActivityInVehicle: "in_vehicle",
	ActivityOnBicycle: "on_bicycle",
	ActivityOnFoot:    "on_foot",
	ActivityStill:     "still",
	ActivityUnknown:   "unknown",
	ActivityTilting:   "tilting",
	ActivityWalking:   "walking",
	ActivityRunning:   "running",
}

// String returns the activity name.
func (a ActivityType) String() string {
	if name, ok := activityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("activity(%d)", uint8(a))
}

// ParseActivity parses an activity name as printed by ActivityType.String.
func ParseActivity(s string) (ActivityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range activityNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, s)
}

// Condition is a boolean predicate monitored by the service.
//
// CBOR encoding:
//
//	{
//	  1: kind,       // uint8
//	  2: key,        // string (flag conditions)
//	  3: value,      // int (headphone state, activity type)
//	  4: children    // []Condition (and, or, not)
//	}
type Condition struct {
	Kind     ConditionKind `cbor:"1,keyasint"`
	Key      string        `cbor:"2,keyasint,omitempty"`
	Value    int64         `cbor:"3,keyasint,omitempty"`
	Children []Condition   `cbor:"4,keyasint,omitempty"`
}

// Headphones returns a condition that is true while headphones are plugged
// in (plugged=true) or unplugged (plugged=false).
func Headphones(plugged bool) Condition {
	c := Condition{Kind: ConditionHeadphones}
	if plugged {
		c.Value = 1
	}
	return c
}

// Activity returns a condition that is true during the given activity.
func Activity(a ActivityType) Condition {
	return Condition{Kind: ConditionActivity, Value: int64(a)}
}

// Flag returns a condition bound to a service-side flag.
func Flag(key string) Condition {
	return Condition{Kind: ConditionFlag, Key: key}
}

// And returns a condition that is true while all conditions are true.
func And(cs ...Condition) Condition {
	return Condition{Kind: ConditionAnd, Children: cs}
}

// Or returns a condition that is true while any condition is true.
func Or(cs ...Condition) Condition {
	return Condition{Kind: ConditionOr, Children: cs}
}

// Not negates a condition.
func Not(c Condition) Condition {
	return Condition{Kind: ConditionNot, Children: []Condition{c}}
}

// Validate checks the condition tree is well formed.
func (c Condition) Validate() error {
	switch c.Kind {
	case ConditionHeadphones:
		if c.Value != 0 && c.Value != 1 {
			return fmt.Errorf("%w: headphone state %d", ErrInvalidCondition, c.Value)
		}
	case ConditionActivity:
		if _, ok := activityNames[ActivityType(c.Value)]; !ok {
			return fmt.Errorf("%w: activity %d", ErrInvalidCondition, c.Value)
		}
	case ConditionFlag:
		if c.Key == "" {
			return fmt.Errorf("%w: flag without key", ErrInvalidCondition)
		}
	case ConditionAnd, ConditionOr:
		if len(c.Children) == 0 {
			return fmt.Errorf("%w: empty %s", ErrInvalidCondition, c.Kind)
		}
	case ConditionNot:
		if len(c.Children) != 1 {
			return fmt.Errorf("%w: not takes exactly one operand", ErrInvalidCondition)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidCondition, c.Kind)
	}
	for _, child := range c.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders the condition in the text form accepted by ParseCondition.
func (c Condition) String() string {
	switch c.Kind {
	case ConditionHeadphones:
		if c.Value == 1 {
			return "headphones:plugged"
		}
		return "headphones:unplugged"
	case ConditionActivity:
		return "activity:" + ActivityType(c.Value).String()
	case ConditionFlag:
		return "flag:" + c.Key
	case ConditionNot:
		if len(c.Children) == 1 {
			return "!" + c.Children[0].String()
		}
	case ConditionAnd, ConditionOr:
		sep := " & "
		if c.Kind == ConditionOr {
			sep = " | "
		}
		parts := make([]string, len(c.Children))
		for i, child := range c.Children {
			parts[i] = child.String()
		}
		return strings.Join(parts, sep)
	}
	return c.Kind.String()
}

// ParseCondition parses the text form of a condition.
//
// Terms are "headphones:plugged", "headphones:unplugged", "activity:<name>"
// and "flag:<key>", optionally negated with a leading "!". Terms combine with
// "&" and "|"; "&" binds tighter. Parentheses are not supported.
func ParseCondition(s string) (Condition, error) {
	var ors []Condition
	for _, orPart := range strings.Split(s, "|") {
		var ands []Condition
		for _, term := range strings.Split(orPart, "&") {
			c, err := parseTerm(strings.TrimSpace(term))
			if err != nil {
				return Condition{}, err
			}
			ands = append(ands, c)
		}
		if len(ands) == 1 {
			ors = append(ors, ands[0])
		} else {
			ors = append(ors, And(ands...))
		}
	}
	if len(ors) == 1 {
		return ors[0], nil
	}
	return Or(ors...), nil
}

func parseTerm(term string) (Condition, error) {
	if term == "" {
		return Condition{}, fmt.Errorf("%w: empty term", ErrInvalidCondition)
	}
	if strings.HasPrefix(term, "!") {
		inner, err := parseTerm(strings.TrimSpace(term[1:]))
		if err != nil {
			return Condition{}, err
		}
		return Not(inner), nil
	}

	kind, arg, ok := strings.Cut(term, ":")
	if !ok || arg == "" {
		return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, term)
	}

	switch strings.ToLower(kind) {
	case "headphones":
		switch strings.ToLower(arg) {
		case "plugged", "plugged_in", "on":
			return Headphones(true), nil
		case "unplugged", "off":
			return Headphones(false), nil
		}
		return Condition{}, fmt.Errorf("%w: headphone state %q", ErrInvalidCondition, arg)
	case "activity":
		a, err := ParseActivity(arg)
		if err != nil {
			return Condition{}, err
		}
		return Activity(a), nil
	case "flag":
		return Flag(arg), nil
	}
	return Condition{}, fmt.Errorf("%w: unknown term kind %q", ErrInvalidCondition, kind)
}
