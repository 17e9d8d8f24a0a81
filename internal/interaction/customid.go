package interaction

import (
	"fmt"
	"strconv"
	"strings"
)

// Action discriminates the button actions this router owns.
type Action string

const (
	// ActionUpload re-ingests a document by filename.
	ActionUpload Action = "UPLOAD"
	// ActionAsk asks about a specific book by ID.
	ActionAsk Action = "ASK"
)

// customIDPrefix marks component identifiers owned by this router.
const customIDPrefix = "LIB"

// CustomID is the parsed form of a component identifier. The grammar is
//
//	LIB:<ACTION>:<key>=<value>[;r=<int>;b=<int>]
//
// where ACTION pairs with its key: UPLOAD carries filename, ASK carries
// bookId. The optional ;r=…;b=… suffix only disambiguates sibling
// buttons on one message; it is stripped during parsing and carries no
// meaning beyond uniqueness.
type CustomID struct {
	Action Action

	// Filename is set for ActionUpload.
	Filename string
	// BookID is set for ActionAsk.
	BookID string
}

// keyFor maps each action to the single key it carries.
func keyFor(a Action) string {
	switch a {
	case ActionUpload:
		return "filename"
	case ActionAsk:
		return "bookId"
	}
	return ""
}

// ParseCustomID parses a component identifier. It returns
// ErrUnknownCustomID for anything that does not match the grammar,
// including identifiers owned by other features.
func ParseCustomID(s string) (CustomID, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return CustomID{}, fmt.Errorf("%w: %q", ErrUnknownCustomID, s)
	}

	action := Action(parts[1])
	key := keyFor(action)
	if key == "" {
		return CustomID{}, fmt.Errorf("%w: action %q", ErrUnknownCustomID, parts[1])
	}

	// First segment is key=value; any further segments are the
	// uniqueness suffix and must parse as r=<int> or b=<int>.
	segments := strings.Split(parts[2], ";")
	for _, seg := range segments[1:] {
		name, num, ok := strings.Cut(seg, "=")
		if !ok || (name != "r" && name != "b") {
			return CustomID{}, fmt.Errorf("%w: bad suffix %q", ErrUnknownCustomID, seg)
		}
		if _, err := strconv.Atoi(num); err != nil {
			return CustomID{}, fmt.Errorf("%w: bad suffix %q", ErrUnknownCustomID, seg)
		}
	}

	gotKey, value, ok := strings.Cut(segments[0], "=")
	if !ok || gotKey != key || value == "" {
		return CustomID{}, fmt.Errorf("%w: expected %s=<value>", ErrUnknownCustomID, key)
	}

	id := CustomID{Action: action}
	switch action {
	case ActionUpload:
		id.Filename = value
	case ActionAsk:
		id.BookID = value
	}
	return id, nil
}

// Value returns the single payload value regardless of action.
func (c CustomID) Value() string {
	if c.Action == ActionUpload {
		return c.Filename
	}
	return c.BookID
}

// UploadID builds an UPLOAD identifier. Row and button indexes are
// appended as the uniqueness suffix when non-negative.
func UploadID(filename string, row, button int) string {
	return formatID(ActionUpload, filename, row, button)
}

// AskID builds an ASK identifier.
func AskID(bookID string, row, button int) string {
	return formatID(ActionAsk, bookID, row, button)
}

func formatID(action Action, value string, row, button int) string {
	id := fmt.Sprintf("%s:%s:%s=%s", customIDPrefix, action, keyFor(action), value)
	if row >= 0 && button >= 0 {
		id += fmt.Sprintf(";r=%d;b=%d", row, button)
	}
	return id
}
