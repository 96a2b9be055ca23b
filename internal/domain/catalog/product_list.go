package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// ProductList is the advisory list of product names offered while typing
// a line item. Entries are suggestions only; any product name is accepted.
type ProductList []string

// NewProductList drops blank names and duplicates, keeping first occurrences
func NewProductList(names []string) ProductList {
	seen := make(map[string]struct{}, len(names))
	list := make(ProductList, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		list = append(list, n)
	}
	return list
}

var folder = cases.Fold()

func foldKey(s string) string {
	return folder.String(width.Fold.String(s))
}

// Suggest returns the products containing query, ignoring case and
// full-width forms, in list order. A limit <= 0 means no limit.
func (l ProductList) Suggest(query string, limit int) []string {
	key := foldKey(strings.TrimSpace(query))
	out := make([]string, 0)
	for _, name := range l {
		if key != "" && !strings.Contains(foldKey(name), key) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
