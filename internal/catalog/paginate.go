package catalog

// PageSize is the number of entries per catalog page.
const PageSize = 20

// Page is one slice of the catalog.
type Page struct {
	Entries      []Entry
	PageNumber   int
	TotalPages   int
	TotalEntries int
}

// Paginate returns page number page (1-indexed) of entries. Pages outside
// 1..TotalPages have no entries but still report the totals.
func Paginate(entries []Entry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = PageSize
	}

	total := len(entries)
	result := Page{
		Entries:      []Entry{},
		PageNumber:   page,
		TotalPages:   (total + pageSize - 1) / pageSize,
		TotalEntries: total,
	}

	if page < 1 || page > result.TotalPages {
		return result
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Entries = append(result.Entries, entries[start:end]...)
	return result
}
