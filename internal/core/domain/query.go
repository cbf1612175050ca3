package domain

// SortField orders a listing by one document key
type SortField struct {
	Key        string
	Descending bool
}

// EntityQuery selects stored entities of one kind. Filter is matched by
// containment against the stored fields. Without Sort the newest entities
// come first.
type EntityQuery struct {
	Filter Document
	Sort   []SortField
	Limit  int
	Skip   int
}

// EntityPage is one page of a listing, Total is set when it was requested
type EntityPage struct {
	Entities []Entity
	Total    *int64
	Limit    int
	Skip     int
}
