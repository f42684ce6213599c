package datagen

/*
Generates synthetic shopping baskets from a yaml description of the catalogue.
Every transaction draws each bundle with its probability (all of the bundle's
items are added) and then each item independently with NoiseProbability.
*/

import (
	"errors"
	"fmt"
	"math/rand"

	U "recommender/util"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type Item struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type Bundle struct {
	Items       []int   `yaml:"items"`
	Probability float64 `yaml:"probability"`
}

type Config struct {
	Seed             int64    `yaml:"seed"`
	Transactions     int      `yaml:"transactions"`
	NoiseProbability float64  `yaml:"noise_probability"`
	Items            []Item   `yaml:"items"`
	Bundles          []Bundle `yaml:"bundles"`
}

func ParseConfig(fileContents []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(fileContents, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}

func (c *Config) Validate() error {
	if c.Transactions < 0 {
		return errors.New("transactions must not be negative")
	}
	if !isProbability(c.NoiseProbability) {
		return fmt.Errorf("noise_probability %v outside [0, 1]", c.NoiseProbability)
	}
	for idx, b := range c.Bundles {
		if !isProbability(b.Probability) {
			return fmt.Errorf("bundle %d probability %v outside [0, 1]", idx, b.Probability)
		}
		for _, itm := range b.Items {
			if itm < 0 || itm >= len(c.Items) {
				return fmt.Errorf("bundle %d references unknown item %d", idx, itm)
			}
		}
	}
	return nil
}

// Prices parses the catalogue prices, indexed by item id.
func (c *Config) Prices() ([]decimal.Decimal, error) {
	prices := make([]decimal.Decimal, 0, len(c.Items))
	for itm, item := range c.Items {
		p, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %v", itm, item.Name, err)
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// Generate returns the prices and c.Transactions baskets. The same seed gives the same baskets.
func Generate(c *Config) ([]decimal.Decimal, [][]int, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	prices, err := c.Prices()
	if err != nil {
		return nil, nil, err
	}

	r := rand.New(rand.NewSource(c.Seed))
	db := make([][]int, 0, c.Transactions)
	for i := 0; i < c.Transactions; i++ {
		basket := make([]int, 0)
		for _, b := range c.Bundles {
			if r.Float64() < b.Probability {
				basket = append(basket, b.Items...)
			}
		}
		for itm := range c.Items {
			if r.Float64() < c.NoiseProbability {
				basket = append(basket, itm)
			}
		}
		db = append(db, U.SortedUniqueInts(basket))
	}

	log.WithFields(log.Fields{
		"items":        len(prices),
		"bundles":      len(c.Bundles),
		"transactions": len(db),
	}).Debug("Generated dataset")
	return prices, db, nil
}
