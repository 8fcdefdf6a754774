package stroke

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every Decode failure.
var ErrMalformed = errors.New("stroke: malformed message")

const (
	fieldSep   = ","
	fieldCount = 7
)

var fieldNames = [fieldCount]string{"shape", "color", "width", "x1", "y1", "x2", "y2"}

// Encode renders e as a single wire message, without the line terminator:
//
//	<Shape>,<packed color>,<width>,<x1>,<y1>,<x2>,<y2>
func Encode(e Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	b := make([]byte, 0, 48)
	b = append(b, e.Shape.String()...)
	for _, v := range [...]int64{int64(e.Color.Packed()), int64(e.Width), int64(e.X1), int64(e.Y1), int64(e.X2), int64(e.Y2)} {
		b = append(b, fieldSep...)
		b = strconv.AppendInt(b, v, 10)
	}
	return string(b), nil
}

// Decode parses one wire message. A trailing carriage return is tolerated.
func Decode(line string) (Event, error) {
	line = strings.TrimSuffix(line, "\r")
	parts := strings.Split(line, fieldSep)
	if len(parts) != fieldCount {
		return Event{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformed, len(parts), fieldCount)
	}

	shape, err := ParseShapeKind(parts[0])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var nums [fieldCount - 1]int
	for i := range nums {
		v, err := strconv.ParseInt(parts[i+1], 10, 32)
		if err != nil {
			return Event{}, fmt.Errorf("%w: field %s: %q is not a 32-bit integer", ErrMalformed, fieldNames[i+1], parts[i+1])
		}
		nums[i] = int(v)
	}

	e := Event{
		Shape: shape,
		Color: FromPacked(int32(nums[0])),
		Width: nums[1],
		X1:    nums[2],
		Y1:    nums[3],
		X2:    nums[4],
		Y2:    nums[5],
	}
	if e.Width < 1 {
		return Event{}, fmt.Errorf("%w: field width: %d is below 1", ErrMalformed, e.Width)
	}
	return e, nil
}
