package models

// MFetchStatus tells whether an upstream call produced real data.
// A degraded call still yields a usable (empty) value.
type MFetchStatus struct {
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// StatusOK is the status of a successful fetch.
var StatusOK = MFetchStatus{}

// MFetchResult pairs fetched data with its status.
type MFetchResult[T any] struct {
	Data   T
	Status MFetchStatus
}

// OK wraps data in a successful result.
func OK[T any](data T) MFetchResult[T] {
	return MFetchResult[T]{Data: data}
}

// Degraded wraps an empty value with the reason it is empty.
func Degraded[T any](empty T, reason string) MFetchResult[T] {
	return MFetchResult[T]{Data: empty, Status: MFetchStatus{Degraded: true, Reason: reason}}
}
