package db

import "github.com/google/uuid"

// Person is the stored record. Stacks is nil when the client sent no
// stack, which is kept distinct from an empty list.
type Person struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	BirthDate Date      `json:"birth_date"`
	Stacks    []string  `json:"stacks"`
}
