package diagram

import (
	"strconv"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// NextID derives the next shape id from the last element of shapes:
// "1" when shapes is empty, otherwise the last id's numeric value plus one.
//
// A non-numeric last id counts as 0. This is the last-element policy, which
// reuses an id once the last shape is removed; [IDMonotonic] does not.
func NextID(shapes []Shape) string {
	if len(shapes) == 0 {
		return "1"
	}
	n, _ := strconv.Atoi(shapes[len(shapes)-1].ID)
	return strconv.Itoa(n + 1)
}

// MaxID returns the largest numeric id in shapes, or 0 if none is numeric.
func MaxID(shapes []Shape) int {
	hi := 0
	for _, s := range shapes {
		if n, err := strconv.Atoi(s.ID); err == nil && n > hi {
			hi = n
		}
	}
	return hi
}

// IDPolicy selects how the store derives new shape ids.
type IDPolicy string

// Id policies.
const (
	// IDMonotonic hands out ids from a counter that only moves forward.
	// Deleted ids are never reused.
	IDMonotonic IDPolicy = "monotonic"

	// IDMax uses the largest numeric id in the list plus one.
	IDMax IDPolicy = "max"

	// IDLast uses the last element's id plus one (see [NextID]).
	IDLast IDPolicy = "last"
)

// ParseIDPolicy validates s as an id policy. Empty selects [IDMonotonic].
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch p := IDPolicy(s); p {
	case "":
		return IDMonotonic, nil
	case IDMonotonic, IDMax, IDLast:
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "invalid id policy: %q (must be monotonic, max or last)", s)
}

// idGenerator produces shape ids. Not safe for concurrent use; the store
// serializes access.
type idGenerator interface {
	next(shapes []Shape) string
	reset(shapes []Shape)
}

func newIDGenerator(p IDPolicy) idGenerator {
	switch p {
	case IDMax:
		return maxIDs{}
	case IDLast:
		return lastIDs{}
	default:
		return &counterIDs{}
	}
}

type lastIDs struct{}

func (lastIDs) next(shapes []Shape) string { return NextID(shapes) }
func (lastIDs) reset([]Shape)              {}

type maxIDs struct{}

func (maxIDs) next(shapes []Shape) string { return strconv.Itoa(MaxID(shapes) + 1) }
func (maxIDs) reset([]Shape)              {}

type counterIDs struct {
	last int
}

func (c *counterIDs) next(shapes []Shape) string {
	// Shapes added through change batches may carry ids ahead of the counter.
	if m := MaxID(shapes); m > c.last {
		c.last = m
	}
	c.last++
	return strconv.Itoa(c.last)
}

func (c *counterIDs) reset(shapes []Shape) { c.last = MaxID(shapes) }
