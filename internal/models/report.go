package models

import "time"

// LibraryCounts holds the headline numbers of the dashboard.
type LibraryCounts struct {
	TotalBooks          int `db:"total_books" json:"total_books"`
	AvailableBooks      int `db:"available_books" json:"available_books"`
	ActiveLoans         int `db:"active_loans" json:"active_loans"`
	Members             int `db:"members" json:"members"`
	OverdueLoans        int `db:"overdue_loans" json:"overdue_loans"`
	BooksAddedThisMonth int `db:"books_added_this_month" json:"books_added_this_month"`
}

// NamedCount is a label with an occurrence count, used for rankings.
type NamedCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// MonthlyCount is the number of events in the calendar month starting at Month.
type MonthlyCount struct {
	Month time.Time `db:"month" json:"month"`
	Count int       `db:"count" json:"count"`
}

// MonthStart returns the first instant of t's UTC calendar month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
