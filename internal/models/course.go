package models

// Course is a canonical course offered by the academy.
type Course struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
