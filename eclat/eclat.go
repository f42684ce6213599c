package eclat

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Algorithm implemented : Eclat (Zaki, 2000), depth first over the vertical format.

/*	seed the search with every single item whose posting meets the support count,
	ordered by ascending item id.
	a class is a list of sibling candidates that share the same prefix.
	for every candidate Xa of a class, in order
		- record Xa (its support met the threshold when it was created)
		- intersect t(Xa) with t(Xb) for every sibling Xb after Xa
		- the surviving Xa u Xb form the next class, pushed on the work list
	no candidate is ever generated twice since Xb is always after Xa.

	T_0 : 0, 1
	T_1 : 0, 1
	T_2 : 0, 1
	T_3 : 0, 2
	support_count : 2
	seed  : {0}:[0,1,2,3] {1}:[0,1,2]        ({2} dropped, count 1)
	class : {0,1}:[0,1,2]
*/

// Mine returns every itemset of the index whose support count is at least
// minSupportCount. Counts below 1 are raised to 1.
func Mine(vi VerticalIndex, minSupportCount int) *FrequentItemsets {
	startTime := time.Now()
	if minSupportCount < 1 {
		minSupportCount = 1
	}
	fi := newFrequentItemsets(vi.NumTransactions, minSupportCount)
	seed := seedCandidates(vi, minSupportCount)
	mineClass(seed, minSupportCount, fi.add)
	fi.finalize()

	log.WithFields(log.Fields{
		"support_count": minSupportCount,
		"seed":          len(seed),
		"itemsets":      len(fi.Itemsets),
		"time_taken":    time.Since(startTime).Milliseconds(),
	}).Info("mined frequent itemsets")
	return fi
}

// MineParallel mines the same table as Mine, dispatching the top level
// branches to workers. Branches only share read access to the index.
func MineParallel(vi VerticalIndex, minSupportCount, workers int) *FrequentItemsets {
	if workers <= 1 {
		return Mine(vi, minSupportCount)
	}
	startTime := time.Now()
	if minSupportCount < 1 {
		minSupportCount = 1
	}
	fi := newFrequentItemsets(vi.NumTransactions, minSupportCount)
	seed := seedCandidates(vi, minSupportCount)

	results := make([][]ItemsetCount, len(seed))
	branches := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range branches {
				local := make([]ItemsetCount, 0)
				collect := func(c candidate) {
					local = append(local, ItemsetCount{Items: c.items, Count: len(c.tids)})
				}
				collect(seed[idx])
				suffix := extendCandidate(seed[idx], seed[idx+1:], minSupportCount)
				mineClass(suffix, minSupportCount, collect)
				results[idx] = local
			}
		}()
	}
	for idx := range seed {
		branches <- idx
	}
	close(branches)
	wg.Wait()

	for _, r := range results {
		fi.Itemsets = append(fi.Itemsets, r...)
	}
	fi.finalize()

	log.WithFields(log.Fields{
		"support_count": minSupportCount,
		"workers":       workers,
		"seed":          len(seed),
		"itemsets":      len(fi.Itemsets),
		"time_taken":    time.Since(startTime).Milliseconds(),
	}).Info("mined frequent itemsets in parallel")
	return fi
}

func seedCandidates(vi VerticalIndex, minSupportCount int) []candidate {
	seed := make([]candidate, 0)
	for _, itm := range vi.Items() {
		tids := vi.Postings[itm]
		if len(tids) >= minSupportCount {
			seed = append(seed, candidate{items: Itemset{itm}, tids: tids})
		}
	}
	return seed
}

// mineClass walks a class and all of its extensions with an explicit stack.
func mineClass(class []candidate, minSupportCount int, emit func(candidate)) {
	if len(class) == 0 {
		return
	}
	stack := [][]candidate{class}
	for len(stack) > 0 {
		cls := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for idx, a := range cls {
			emit(a)
			suffix := extendCandidate(a, cls[idx+1:], minSupportCount)
			if len(suffix) > 0 {
				stack = append(stack, suffix)
			}
		}
	}
}

// extendCandidate joins a with each later sibling and keeps the frequent unions.
func extendCandidate(a candidate, siblings []candidate, minSupportCount int) []candidate {
	suffix := make([]candidate, 0)
	for _, b := range siblings {
		tids := intersectPostings(a.tids, b.tids)
		if len(tids) < minSupportCount {
			continue
		}
		items := make(Itemset, len(a.items)+1)
		copy(items, a.items)
		items[len(a.items)] = b.items[len(b.items)-1]
		suffix = append(suffix, candidate{items: items, tids: tids})
	}
	return suffix
}
