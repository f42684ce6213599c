package eclat

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

// BuildVerticalIndex converts a transaction log into item -> transaction index
// postings. Repeated items inside one transaction are counted once.
func BuildVerticalIndex(db [][]int) VerticalIndex {
	var vi VerticalIndex
	vi.Postings = make(map[int]Posting)
	vi.NumTransactions = len(db)

	for tid, trn := range db {
		for _, itm := range trn {
			p := vi.Postings[itm]
			// tids are appended in increasing order, so a repeat can only be the tail
			if len(p) > 0 && p[len(p)-1] == tid {
				continue
			}
			vi.Postings[itm] = append(p, tid)
		}
	}

	log.WithFields(log.Fields{
		"transactions": vi.NumTransactions,
		"items":        len(vi.Postings),
	}).Debug("built vertical index")
	return vi
}

// Support returns the number of transactions containing every item of its.
func (vi VerticalIndex) Support(its Itemset) int {
	if len(its) == 0 {
		return vi.NumTransactions
	}
	tids, ok := vi.Postings[its[0]]
	if !ok {
		return 0
	}
	for _, itm := range its[1:] {
		p, ok := vi.Postings[itm]
		if !ok {
			return 0
		}
		tids = intersectPostings(tids, p)
		if len(tids) == 0 {
			return 0
		}
	}
	return len(tids)
}

// Items returns the distinct items of the index in ascending order.
func (vi VerticalIndex) Items() []int {
	itms := make([]int, 0, len(vi.Postings))
	for itm := range vi.Postings {
		itms = append(itms, itm)
	}
	sort.Ints(itms)
	return itms
}
