package model

type Doctor struct {
	Base
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Specialty string `db:"specialty" json:"specialty,omitempty"`
	Active    bool   `db:"active" json:"active"`
}
