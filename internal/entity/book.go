package entity

type Book struct {
	Base
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Author      string  `db:"author" json:"author"`
	Price       float64 `db:"price" json:"price"`
	CategoryID  int64   `db:"category_id" json:"category_id"`

	// Populated only by composite reads.
	Category *Category `db:"-" json:"category,omitempty"`
	Tags     []Tag     `db:"-" json:"tags,omitempty"`
}

type Category struct {
	Base
	Name string `db:"name" json:"name"`

	Books []Book `db:"-" json:"books,omitempty"`
}

type Tag struct {
	Base
	Name string `db:"name" json:"name"`
}
