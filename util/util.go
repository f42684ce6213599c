package util

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

const MAX_LINE_BYTES = 20 * 1024 * 1024

// CreateScannerFromReader returns a line scanner that accepts lines up to MAX_LINE_BYTES.
func CreateScannerFromReader(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MAX_LINE_BYTES)
	scanner.Buffer(buf, MAX_LINE_BYTES)
	return scanner
}

// TimeNowUnix returns the current unix timestamp in seconds.
func TimeNowUnix() int64 {
	return time.Now().UTC().Unix()
}

// SortedUniqueInts returns a sorted copy of arr without duplicates.
func SortedUniqueInts(arr []int) []int {
	res := make([]int, 0, len(arr))
	seen := make(map[int]bool, len(arr))
	for _, v := range arr {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}
	sort.Ints(res)
	return res
}

// IntsToString joins ints with sep, e.g. [1 2 3] -> "1:2:3".
func IntsToString(arr []int, sep string) string {
	strs := make([]string, 0, len(arr))
	for _, v := range arr {
		strs = append(strs, strconv.Itoa(v))
	}
	return strings.Join(strs, sep)
}
