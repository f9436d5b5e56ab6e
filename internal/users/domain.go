package users

import "time"

// User represents a registry record. The identifier is store-assigned and
// strictly increasing, which is what makes it usable as a pagination cursor.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birthDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser carries the fields of a record about to be inserted.
type NewUser struct {
	Name      string
	Email     string
	Phone     string
	BirthDate time.Time
	CreatedAt time.Time
}

// ListQuery is the repository-level shape of a keyset page request. AfterID
// restricts the scan to identifiers strictly greater than the cursor; zero
// means start from the beginning. Filters are conjunctive.
type ListQuery struct {
	AfterID int64
	Limit   int
	Name    string
	Email   string
	Phone   string
}
