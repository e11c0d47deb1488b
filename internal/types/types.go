package types

import "fmt"

// StyleRow holds the computed font styles of a single h1 element
type StyleRow struct {
	FontSize   string `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
}

// Line formats the row as a CSV line without the trailing newline
func (r StyleRow) Line() string {
	return fmt.Sprintf(`"%s", "%s"`, r.FontSize, r.FontWeight)
}
