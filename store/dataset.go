package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	U "recommender/util"

	E "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PriceLine is one line of a dataset's prices file.
type PriceLine struct {
	Item  int             `json:"i"`
	Price decimal.Decimal `json:"p"`
}

// TransactionLine is one line of a dataset's transactions file.
type TransactionLine struct {
	Items []int `json:"t"`
}

// ReadPrices reads a prices file. Item ids must cover [0, N) exactly once, in any order.
func ReadPrices(r io.Reader) ([]decimal.Decimal, error) {
	lines := make([]PriceLine, 0)
	scanner := U.CreateScannerFromReader(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		var pl PriceLine
		if err := json.Unmarshal([]byte(line), &pl); err != nil {
			log.WithFields(log.Fields{"line": line, "err": err}).Error("Read failed")
			return nil, err
		}
		lines = append(lines, pl)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, len(lines))
	seen := make([]bool, len(lines))
	for _, pl := range lines {
		if pl.Item < 0 || pl.Item >= len(lines) {
			return nil, fmt.Errorf("price for item %d outside [0, %d)", pl.Item, len(lines))
		}
		if seen[pl.Item] {
			return nil, fmt.Errorf("duplicate price for item %d", pl.Item)
		}
		if pl.Price.IsNegative() {
			return nil, fmt.Errorf("negative price for item %d", pl.Item)
		}
		seen[pl.Item] = true
		prices[pl.Item] = pl.Price
	}
	return prices, nil
}

// ReadTransactions reads a transactions file in order.
func ReadTransactions(r io.Reader) ([][]int, error) {
	db := make([][]int, 0)
	scanner := U.CreateScannerFromReader(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		var tl TransactionLine
		if err := json.Unmarshal([]byte(line), &tl); err != nil {
			log.WithFields(log.Fields{"line": line, "err": err}).Error("Read failed")
			return nil, E.Wrap(err, fmt.Sprintf("transactions line %d", lineNum))
		}
		if tl.Items == nil {
			tl.Items = []int{}
		}
		db = append(db, tl.Items)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

func CreateReaderFromPrices(prices []decimal.Decimal) (*bytes.Reader, error) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for itm, p := range prices {
		lineBytes, err := json.Marshal(PriceLine{Item: itm, Price: p})
		if err != nil {
			return nil, err
		}
		if _, err := bw.WriteString(fmt.Sprintf("%s\n", string(lineBytes))); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

func CreateReaderFromTransactions(db [][]int) (*bytes.Reader, error) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for _, trn := range db {
		lineBytes, err := json.Marshal(TransactionLine{Items: trn})
		if err != nil {
			return nil, err
		}
		if _, err := bw.WriteString(fmt.Sprintf("%s\n", string(lineBytes))); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}
