package eclat

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const keySeparator = ","

// NewItemset returns the canonical form of items: sorted, duplicates removed.
func NewItemset(items []int) Itemset {
	its := make(Itemset, len(items))
	copy(its, items)
	sort.Ints(its)
	res := its[:0]
	for idx, itm := range its {
		if idx > 0 && itm == its[idx-1] {
			continue
		}
		res = append(res, itm)
	}
	return res
}

// Key is a string identity for the itemset, usable as a map key.
func (its Itemset) Key() string {
	var sb strings.Builder
	for idx, itm := range its {
		if idx > 0 {
			sb.WriteString(keySeparator)
		}
		sb.WriteString(strconv.Itoa(itm))
	}
	return sb.String()
}

func (its Itemset) Contains(itm int) bool {
	idx := sort.SearchInts(its, itm)
	return idx < len(its) && its[idx] == itm
}

// IsSubsetOf reports whether every item of its is in other. Both must be canonical.
func (its Itemset) IsSubsetOf(other Itemset) bool {
	if len(its) > len(other) {
		return false
	}
	j := 0
	for _, itm := range its {
		for j < len(other) && other[j] < itm {
			j++
		}
		if j == len(other) || other[j] != itm {
			return false
		}
		j++
	}
	return true
}

// Minus returns the items of its that are not in other.
func (its Itemset) Minus(other Itemset) Itemset {
	res := make(Itemset, 0, len(its))
	for _, itm := range its {
		if !other.Contains(itm) {
			res = append(res, itm)
		}
	}
	return res
}

func (its Itemset) Equal(other Itemset) bool {
	if len(its) != len(other) {
		return false
	}
	for idx := range its {
		if its[idx] != other[idx] {
			return false
		}
	}
	return true
}

// lessItemset orders by size, then lexicographically.
func lessItemset(a, b Itemset) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return a[idx] < b[idx]
		}
	}
	return false
}

// intersectPostings merges two sorted postings.
func intersectPostings(a, b Posting) Posting {
	if len(a) > len(b) {
		a, b = b, a
	}
	res := make(Posting, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			res = append(res, a[i])
			i++
			j++
		}
	}
	return res
}

// SupportCountFromFraction is the smallest count c with c/numTrans >= fraction,
// never below 1.
func SupportCountFromFraction(fraction float64, numTrans int) int {
	if numTrans <= 0 || fraction <= 0 {
		return 1
	}
	// tolerance absorbs float noise such as 0.3*10 = 3.0000000000000004
	c := int(math.Ceil(fraction*float64(numTrans) - 1e-9))
	if c < 1 {
		return 1
	}
	return c
}

func newFrequentItemsets(numTrans, minSupportCount int) *FrequentItemsets {
	return &FrequentItemsets{
		NumTransactions: numTrans,
		MinSupportCount: minSupportCount,
		Itemsets:        make([]ItemsetCount, 0),
		index:           make(map[string]int),
	}
}

// NewFrequentItemsets builds a table from already mined counts, e.g. read back from a file.
func NewFrequentItemsets(numTrans, minSupportCount int, itemsets []ItemsetCount) *FrequentItemsets {
	fi := newFrequentItemsets(numTrans, minSupportCount)
	for _, ic := range itemsets {
		fi.Itemsets = append(fi.Itemsets, ItemsetCount{Items: NewItemset(ic.Items), Count: ic.Count})
	}
	fi.finalize()
	return fi
}

func (fi *FrequentItemsets) add(c candidate) {
	fi.Itemsets = append(fi.Itemsets, ItemsetCount{Items: c.items, Count: len(c.tids)})
}

func (fi *FrequentItemsets) finalize() {
	sort.SliceStable(fi.Itemsets, func(i, j int) bool {
		return lessItemset(fi.Itemsets[i].Items, fi.Itemsets[j].Items)
	})
	fi.index = make(map[string]int, len(fi.Itemsets))
	for idx, ic := range fi.Itemsets {
		fi.index[ic.Items.Key()] = idx
	}
}

// Support looks up the support count of a canonical itemset.
func (fi *FrequentItemsets) Support(its Itemset) (int, bool) {
	if fi == nil {
		return 0, false
	}
	idx, ok := fi.index[its.Key()]
	if !ok {
		return 0, false
	}
	return fi.Itemsets[idx].Count, true
}

func (fi *FrequentItemsets) Len() int {
	if fi == nil {
		return 0
	}
	return len(fi.Itemsets)
}

// CountBySize returns the number of frequent itemsets of each length.
func (fi *FrequentItemsets) CountBySize() map[int]int {
	res := make(map[int]int)
	if fi == nil {
		return res
	}
	for _, ic := range fi.Itemsets {
		res[len(ic.Items)]++
	}
	return res
}
