package eclat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	U "recommender/util"

	log "github.com/sirupsen/logrus"
)

// WriteFrequentItemsets writes one json line per frequent itemset.
func WriteFrequentItemsets(w io.Writer, fi *FrequentItemsets) error {
	bw := bufio.NewWriter(w)
	if fi == nil {
		return bw.Flush()
	}
	for _, ic := range fi.Itemsets {
		itemsetBytes, err := json.Marshal(ic)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(fmt.Sprintf("%s\n", string(itemsetBytes))); err != nil {
			log.WithFields(log.Fields{"line": string(itemsetBytes), "err": err}).Error("Unable to write itemset.")
			return err
		}
	}
	return bw.Flush()
}

// ReadFrequentItemsets reads back a table written by WriteFrequentItemsets.
func ReadFrequentItemsets(r io.Reader, numTrans, minSupportCount int) (*FrequentItemsets, error) {
	itemsets := make([]ItemsetCount, 0)
	scanner := U.CreateScannerFromReader(r)
	for scanner.Scan() {
		line := scanner.Text()
		var ic ItemsetCount
		if err := json.Unmarshal([]byte(line), &ic); err != nil {
			log.WithFields(log.Fields{"line": line, "err": err}).Error("Read failed")
			return nil, err
		}
		itemsets = append(itemsets, ic)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewFrequentItemsets(numTrans, minSupportCount, itemsets), nil
}
