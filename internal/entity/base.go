package entity

// Base carries the store-assigned identity shared by every catalog record.
type Base struct {
	ID int64 `db:"id" json:"id"`
}
