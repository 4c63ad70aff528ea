package browser

import "fmt"

// NotMountedError is returned when the flow container is not in the page yet.
type NotMountedError struct {
	Selector string
}

func (e *NotMountedError) Error() string {
	return fmt.Sprintf("flow container %s is not mounted", e.Selector)
}
