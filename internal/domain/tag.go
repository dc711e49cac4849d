package domain

// TagCount is one distinct customer tag of a store and how many customers carry it.
// Tags are free-form labels on customers; matching is exact and case-sensitive.
type TagCount struct {
	Name      string
	Customers int
}
