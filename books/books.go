// Package books defines the book record and its partial-update patch.
package books

import "github.com/recordhouse/recordhouse/record"

// Book is one catalog entry. The identity is assigned by the store and
// never by the caller.
type Book struct {
	ID            int64    `json:"id" yaml:"id,omitempty" rec:"id,identity"`
	Title         string   `json:"title" yaml:"title" rec:"title,required,min=1,max=200"`
	Author        string   `json:"author" yaml:"author" rec:"author,required,min=1,max=100"`
	Category      string   `json:"category" yaml:"category" rec:"category,required,min=1,max=50"`
	Description   *string  `json:"description,omitempty" yaml:"description,omitempty" rec:"description,max=500"`
	PublishedYear *int64   `json:"published_year,omitempty" yaml:"published_year,omitempty" rec:"published_year"`
	Rating        *float64 `json:"rating,omitempty" yaml:"rating,omitempty" rec:"rating,gt=0,lt=6"`
}

// Patch is the partial-update input for a book. Every field is optional;
// only fields the caller explicitly supplies are applied.
type Patch struct {
	Title         record.Optional[string]  `json:"title" rec:"title"`
	Author        record.Optional[string]  `json:"author" rec:"author"`
	Category      record.Optional[string]  `json:"category" rec:"category"`
	Description   record.Optional[string]  `json:"description" rec:"description"`
	PublishedYear record.Optional[int64]   `json:"published_year" rec:"published_year"`
	Rating        record.Optional[float64] `json:"rating" rec:"rating"`
}
