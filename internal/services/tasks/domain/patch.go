package domain

// Optional carries a field value together with explicit presence. The zero
// value is "absent". This keeps "field not supplied" distinct from "field
// supplied as empty", which the partial-update contract depends on.
type Optional[T any] struct {
	value T
	set   bool
}

// NewOptional returns a present Optional holding value.
func NewOptional[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// Get returns the held value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the field was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// TaskPatch is a partial update request. Absent fields are left untouched.
// Status and priority travel as raw wire literals and are converted (and
// rejected) before any field is applied to the task.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[string]
	Priority    Optional[string]
	AssigneeID  Optional[string]
}

// IsZero reports whether the patch supplies no fields at all.
func (p TaskPatch) IsZero() bool {
	return !p.Title.IsSet() &&
		!p.Description.IsSet() &&
		!p.Status.IsSet() &&
		!p.Priority.IsSet() &&
		!p.AssigneeID.IsSet()
}
