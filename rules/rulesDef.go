package rules

import (
	"recommender/eclat"
)

// Rule reads "a cart holding Antecedent also tends to hold Consequent".
type Rule struct {
	Antecedent eclat.Itemset `json:"a"`
	Consequent eclat.Itemset `json:"c"`
	Support    int           `json:"s"`
	Confidence float64       `json:"cf"`
	Lift       float64       `json:"lf"`
	Leverage   float64       `json:"lv"`
	Jaccard    float64       `json:"jc"`
}

// Matches reports whether the rule fires for a canonical cart.
func (r Rule) Matches(cart eclat.Itemset) bool {
	return r.Antecedent.IsSubsetOf(cart)
}

// MaxItemsetLength bounds the itemsets split into rules; antecedents are enumerated as bit masks.
const MaxItemsetLength = 62
