package registry

import "fmt"

// PersistenceError reports a failure reading or writing a store.
type PersistenceError struct {
	Backend   string // "json" or "sqlite"
	Operation string // "load" or "save"
	Location  string // file path of the store
	Cause     error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [backend=%s, operation=%s, location=%s]: %v",
		e.Backend, e.Operation, e.Location, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func newPersistenceError(store Store, operation string, cause error) *PersistenceError {
	return &PersistenceError{
		Backend:   store.Backend(),
		Operation: operation,
		Location:  store.Location(),
		Cause:     cause,
	}
}
