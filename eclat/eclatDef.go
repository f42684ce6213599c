package eclat

// Itemset is kept sorted in ascending item id with no duplicates.
type Itemset []int

// Posting holds the sorted indices of the transactions containing an itemset.
type Posting []int

type VerticalIndex struct {
	Postings        map[int]Posting
	NumTransactions int
}

type ItemsetCount struct {
	Items Itemset `json:"fi"`
	Count int     `json:"fc"`
}

// FrequentItemsets is the table of every itemset whose support count met
// MinSupportCount. Itemsets are ordered by size, then lexicographically.
type FrequentItemsets struct {
	NumTransactions int
	MinSupportCount int
	Itemsets        []ItemsetCount

	index map[string]int
}

// candidate is one member of an equivalence class: an itemset and its posting.
type candidate struct {
	items Itemset
	tids  Posting
}
