package datagen

import (
	"testing"

	"recommender/config"
	"recommender/recommender"

	"github.com/stretchr/testify/assert"
)

const groceries = `
seed: 7
transactions: 500
noise_probability: 0.02
items:
  - name: bread
    price: "2.49"
  - name: butter
    price: "3.10"
  - name: milk
    price: "1.05"
  - name: jam
    price: "4.00"
bundles:
  - items: [0, 1]
    probability: 0.4
  - items: [2]
    probability: 0.3
`

func TestParseAndGenerate(t *testing.T) {
	conf, err := ParseConfig([]byte(groceries))
	assert.Nil(t, err)
	assert.Equal(t, 4, len(conf.Items))
	assert.Equal(t, []int{0, 1}, conf.Bundles[0].Items)

	prices, db, err := Generate(conf)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(prices))
	assert.Equal(t, "2.49", prices[0].String())
	assert.Equal(t, 500, len(db))
	for _, trn := range db {
		for i := 1; i < len(trn); i++ {
			assert.True(t, trn[i-1] < trn[i])
		}
	}

	_, again, err := Generate(conf)
	assert.Nil(t, err)
	assert.Equal(t, db, again)
}

func TestGeneratedBundleIsRecommended(t *testing.T) {
	conf, err := ParseConfig([]byte(groceries))
	assert.Nil(t, err)
	prices, db, err := Generate(conf)
	assert.Nil(t, err)

	rc := recommender.New(config.Default())
	_, err = rc.Train(prices, db)
	assert.Nil(t, err)
	items, err := rc.Recommend([]int{0}, 1)
	assert.Nil(t, err)
	assert.Equal(t, []int{1}, items)
}

func TestInvalidConfig(t *testing.T) {
	_, err := ParseConfig([]byte("transactions: -1\n"))
	assert.NotNil(t, err)

	_, err = ParseConfig([]byte("items:\n  - price: \"1\"\nbundles:\n  - items: [3]\n    probability: 0.5\n"))
	assert.NotNil(t, err)

	_, err = ParseConfig([]byte("noise_probability: 2\n"))
	assert.NotNil(t, err)

	conf, err := ParseConfig([]byte("items:\n  - price: abc\n"))
	assert.Nil(t, err)
	_, _, err = Generate(conf)
	assert.NotNil(t, err)
}
