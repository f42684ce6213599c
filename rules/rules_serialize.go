package rules

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	U "recommender/util"

	log "github.com/sirupsen/logrus"
)

func WriteRules(w io.Writer, rules []Rule) error {
	bw := bufio.NewWriter(w)
	for _, r := range rules {
		ruleBytes, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(fmt.Sprintf("%s\n", string(ruleBytes))); err != nil {
			log.WithFields(log.Fields{"line": string(ruleBytes), "err": err}).Error("Unable to write rule.")
			return err
		}
	}
	return bw.Flush()
}

func ReadRules(r io.Reader) ([]Rule, error) {
	rules := make([]Rule, 0)
	scanner := U.CreateScannerFromReader(r)
	for scanner.Scan() {
		line := scanner.Text()
		var rule Rule
		if err := json.Unmarshal([]byte(line), &rule); err != nil {
			log.WithFields(log.Fields{"line": line, "err": err}).Error("Read failed")
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}
