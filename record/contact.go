package record

import "strings"

// Name holds the structured parts of a contact name (the N line).
type Name struct {
	Family     string
	Given      string
	Additional string
	Prefix     string
	Suffix     string
}

// Display combines the structured parts into a single display string.
func (n Name) Display() string {
	parts := []string{n.Prefix, n.Given, n.Additional, n.Family, n.Suffix}
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// TypedValue is a multi-valued contact entry qualified by a type
// parameter, e.g. a "work" email or a "cell" phone number.
type TypedValue struct {
	Value string
	Type  string
}

// Address holds the structured parts of a postal address (the ADR line).
type Address struct {
	PostOfficeBox string
	Extended      string
	Street        string
	Locality      string
	Region        string
	PostalCode    string
	Country       string
}

// Contact is the typed view of a single vCard.
type Contact struct {
	UID           string
	FormattedName string
	Name          *Name
	Emails        []TypedValue
	Phones        []TypedValue
	Address       *Address
	Organization  string
	Title         string
	Birthday      string // YYYY-MM-DD or --MM-DD when the year is unknown
	URL           string
	Note          string
}
