// Package language maps the many spellings of a language label onto
// ISO 639 codes.
//
// Corpora label rows inconsistently: "en", "eng", "English", "en-US" and
// "sn", "sna", "chiShona" all turn up. Canonical folds the languages this
// tool commonly sees (English and the Southern African Bantu languages
// Shona is confused with) to their ISO 639-1 code and leaves unknown
// labels alone.
package language
