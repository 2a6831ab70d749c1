package models

import "time"

// BookCategory is one of the fixed shelf categories.
type BookCategory string

const (
	CategoryEducation     BookCategory = "Education"
	CategoryEntertainment BookCategory = "Entertainment"
	CategoryComics        BookCategory = "Comics"
	CategoryBiography     BookCategory = "Biography"
	CategoryHistory       BookCategory = "History"
	CategoryNovel         BookCategory = "Novel"
	CategoryFiction       BookCategory = "Fiction"
	CategoryFantasy       BookCategory = "Fantasy"
	CategoryThriller      BookCategory = "Thriller"
	CategoryRomance       BookCategory = "Romance"
	CategoryScifi         BookCategory = "Scifi"
	CategoryHorror        BookCategory = "Horror"
	CategoryPoetry        BookCategory = "Poetry"
	CategoryChildren      BookCategory = "Children"
	CategoryMystery       BookCategory = "Mystery"
	CategoryAdventure     BookCategory = "Adventure"
	CategoryDrama         BookCategory = "Drama"
	CategorySelfhelp      BookCategory = "Selfhelp"
	CategoryReligion      BookCategory = "Religion"
	CategoryTechnology    BookCategory = "Technology"
	CategoryArt           BookCategory = "Art"
	CategoryTravel        BookCategory = "Travel"
	CategoryHealth        BookCategory = "Health"
)

// bookCategoryLabels maps each category to its display label.
var bookCategoryLabels = map[BookCategory]string{
	CategoryEducation:     "Education",
	CategoryEntertainment: "Entertainment",
	CategoryComics:        "Comics",
	CategoryBiography:     "Biography",
	CategoryHistory:       "History",
	CategoryNovel:         "Novel",
	CategoryFiction:       "Fiction",
	CategoryFantasy:       "Fantasy",
	CategoryThriller:      "Thriller",
	CategoryRomance:       "Romance",
	CategoryScifi:         "Sci-Fi",
	CategoryHorror:        "Horror",
	CategoryPoetry:        "Poetry",
	CategoryChildren:      "Children's Story",
	CategoryMystery:       "Mystery",
	CategoryAdventure:     "Adventure",
	CategoryDrama:         "Drama",
	CategorySelfhelp:      "Self-Help",
	CategoryReligion:      "Religion & Spirituality",
	CategoryTechnology:    "Technology",
	CategoryArt:           "Art & Design",
	CategoryTravel:        "Travel",
	CategoryHealth:        "Health & Fitness",
}

// Valid reports whether c is a known category.
func (c BookCategory) Valid() bool {
	_, ok := bookCategoryLabels[c]
	return ok
}

// Label returns the human readable category name.
func (c BookCategory) Label() string {
	if label, ok := bookCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// BookLanguage is the language a book is written in.
type BookLanguage string

const (
	LanguageEnglish BookLanguage = "English"
	LanguageUrdu    BookLanguage = "Urdu"
)

// Valid reports whether l is a supported language.
func (l BookLanguage) Valid() bool {
	return l == LanguageEnglish || l == LanguageUrdu
}

// Book is a catalog title. Quantity counts the copies currently on the shelf,
// not the total owned.
type Book struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Author    string       `db:"author" json:"author"`
	Category  BookCategory `db:"category" json:"category"`
	Language  BookLanguage `db:"language" json:"language"`
	Quantity  int          `db:"quantity" json:"quantity"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// BookFilter captures catalog listing parameters. Results are always sorted by
// name ascending.
type BookFilter struct {
	Category *BookCategory
	Language *BookLanguage
	Search   string
	Page     int
	PageSize int
}
