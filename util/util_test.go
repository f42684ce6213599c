package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedUniqueInts(t *testing.T) {
	assert.Equal(t, []int{1, 2, 5}, SortedUniqueInts([]int{5, 1, 2, 5, 1}))
	assert.Equal(t, []int{}, SortedUniqueInts(nil))
}

func TestIntsToString(t *testing.T) {
	assert.Equal(t, "3:1:2", IntsToString([]int{3, 1, 2}, ":"))
	assert.Equal(t, "", IntsToString([]int{}, ":"))
}

func TestCreateScannerFromReader(t *testing.T) {
	scanner := CreateScannerFromReader(strings.NewReader("a\nb\n"))
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	assert.Nil(t, scanner.Err())
	assert.Equal(t, []string{"a", "b"}, lines)
}
