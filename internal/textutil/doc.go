// Package textutil provides optional normalizers applied to text and label
// cells during preprocessing.
//
// None of them run by default. The cleaning stage only trims surrounding
// whitespace; callers opt into Unicode composition, internal whitespace
// collapsing, and case folding through configuration.
package textutil
