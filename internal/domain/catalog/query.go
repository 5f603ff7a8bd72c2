package catalog

// DefaultPageSize matches the product grid of the admin screens.
const DefaultPageSize = 6

// QueryState is the immutable record of a view's filter, sort and paging
// selections. Mutators return a copy; changing any filter or the sort key
// resets the page to 1 so a shrunken result set never leaves the view on an
// out-of-range page.
type QueryState struct {
	Criteria Criteria
	Sort     SortKey
	Page     int
	PageSize int
}

// NewQueryState returns the default state: no filters, name sort, page 1.
func NewQueryState() QueryState {
	return QueryState{
		Criteria: Criteria{ShopID: ShopAll, Stock: StockAll},
		Sort:     SortByName,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// WithSearch sets the search text and resets the page.
func (q QueryState) WithSearch(text string) QueryState {
	q.Criteria.Search = text
	q.Page = 1
	return q
}

// WithShop sets the shop filter and resets the page.
func (q QueryState) WithShop(shopID string) QueryState {
	q.Criteria.ShopID = shopID
	q.Page = 1
	return q
}

// WithStock sets the stock bucket filter and resets the page.
func (q QueryState) WithStock(f StockFilter) QueryState {
	q.Criteria.Stock = f
	q.Page = 1
	return q
}

// WithSort sets the sort key and resets the page.
func (q QueryState) WithSort(key SortKey) QueryState {
	q.Sort = key
	q.Page = 1
	return q
}

// WithPage moves to the given 1-indexed page without touching the filters.
func (q QueryState) WithPage(page int) QueryState {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// QueryResult is one page of the flattened view plus its totals.
type QueryResult struct {
	Rows       []ProductWithShop
	TotalRows  int
	Page       int
	PageSize   int
	TotalPages int
}

// Apply runs flatten -> filter -> sort -> paginate over a snapshot.
func (q QueryState) Apply(shops []Shop) QueryResult {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	rows := SortProducts(FilterProducts(FlattenProducts(shops), q.Criteria), q.Sort)
	return QueryResult{
		Rows:       Paginate(rows, pageSize, page),
		TotalRows:  len(rows),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: PageCount(len(rows), pageSize),
	}
}
