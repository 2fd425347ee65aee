package arm

import (
	"net/http"
	"strconv"
)

// Status is the success variant an operation mapped its response to.
type Status int

// Success variants.
const (
	StatusOK        Status = http.StatusOK
	StatusCreated   Status = http.StatusCreated
	StatusAccepted  Status = http.StatusAccepted
	StatusNoContent Status = http.StatusNoContent
)

// String returns the variant name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusCreated:
		return "Created"
	case StatusAccepted:
		return "Accepted"
	case StatusNoContent:
		return "NoContent"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}
