// Package builtins provides reference user-defined type callbacks for
// the catalog-schema example, grounded on original_source/main.cpp's
// TinyXMLHooks::CheckAuthor/CheckDate/CheckPrice.
package builtins

import "github.com/gyakoo/scval"

// Registry returns the callback table keyed by callback-name hash,
// ready to hand to internal/xmlcursor.New.
func Registry() map[uint32]func(string) bool {
	return map[uint32]func(string) bool{
		scval.HashString("AUTHOR"): CheckAuthor,
		scval.HashString("DATE"):   CheckDate,
		scval.HashString("PRICE"):  CheckPrice,
	}
}

// CheckAuthor accepts any author string. A real implementation might
// check it against a database of known authors.
func CheckAuthor(value string) bool {
	return true
}

// CheckDate accepts any date string. A real implementation would
// check syntax and semantics (calendar validity, range).
func CheckDate(value string) bool {
	return true
}

// CheckPrice accepts any price string. A real implementation would
// check syntax and a plausible price range against a catalog.
func CheckPrice(value string) bool {
	return true
}
