package config

import (
	json "encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"recommender/eclat"

	"github.com/imdario/mergo"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"

	PriceTieBreakDesc = "desc"
	PriceTieBreakAsc  = "asc"

	CloudProviderDisk = "disk"
	CloudProviderGCS  = "gcs"
	CloudProviderS3   = "s3"

	EnvPrefix = "RECOMMENDER"
)

// MiningConfig holds the training thresholds. Support is either an absolute
// transaction count (MinSupportCount) or a fraction of all transactions
// (MinSupport), never both. Mining always runs on the resolved count.
type MiningConfig struct {
	MinSupport      float64 `json:"min_support" split_words:"true"`
	MinSupportCount int     `json:"min_support_count" split_words:"true"`
	MinConfidence   float64 `json:"min_confidence" split_words:"true"`
	PruneRules      *bool   `json:"prune_rules" split_words:"true"`
	Workers         int     `json:"workers"`
}

// ScoringConfig weights the rule metrics into one composite score:
// ConfidenceWeight*confidence + LiftWeight*lift + LeverageWeight*leverage + JaccardWeight*jaccard.
// Candidates with equal score are ordered by price in PriceTieBreak direction, then by item id.
type ScoringConfig struct {
	ConfidenceWeight float64 `json:"confidence_weight" split_words:"true"`
	LiftWeight       float64 `json:"lift_weight" split_words:"true"`
	LeverageWeight   float64 `json:"leverage_weight" split_words:"true"`
	JaccardWeight    float64 `json:"jaccard_weight" split_words:"true"`
	PriceTieBreak    string  `json:"price_tie_break" split_words:"true"`
}

type RedisConf struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	ExpirySeconds int    `json:"expiry_seconds" split_words:"true"`
}

type Configuration struct {
	Env                     string        `json:"env"`
	IP                      string        `json:"ip"`
	RPCPort                 string        `json:"rpc_port" split_words:"true"`
	HTTPPort                string        `json:"http_port" split_words:"true"`
	DiskBaseDir             string        `json:"disk_dir" envconfig:"disk_dir"`
	BucketName              string        `json:"bucket_name" split_words:"true"`
	CloudProvider           string        `json:"cloud_provider" split_words:"true"`
	AWSRegion               string        `json:"aws_region" envconfig:"aws_region"`
	MetricsProjectID        string        `json:"metrics_project_id" split_words:"true"`
	RecommendationCacheSize int           `json:"recommendation_cache_size" split_words:"true"`
	ModelCacheSize          int           `json:"model_cache_size" split_words:"true"`
	Redis                   RedisConf     `json:"redis"`
	Mining                  MiningConfig  `json:"mining"`
	Scoring                 ScoringConfig `json:"scoring"`
}

func boolPtr(b bool) *bool {
	return &b
}

// Default returns the documented defaults: 1% support, 5% confidence.
func Default() Configuration {
	return Configuration{
		Env:                     DEVELOPMENT,
		IP:                      "127.0.0.1",
		RPCPort:                 "8200",
		HTTPPort:                "8201",
		DiskBaseDir:             "/usr/local/var/recommender/local_disk",
		BucketName:              "/usr/local/var/recommender/cloud_storage",
		CloudProvider:           CloudProviderDisk,
		AWSRegion:               "us-east-1",
		RecommendationCacheSize: 1000,
		ModelCacheSize:          2,
		Redis: RedisConf{
			Port:          6379,
			ExpirySeconds: 3600,
		},
		Mining: MiningConfig{
			MinSupport:    0.01,
			MinConfidence: 0.05,
			PruneRules:    boolPtr(true),
			Workers:       1,
		},
		Scoring: ScoringConfig{
			ConfidenceWeight: 0.25,
			LiftWeight:       0.25,
			LeverageWeight:   0.25,
			JaccardWeight:    0.25,
			PriceTieBreak:    PriceTieBreakDesc,
		},
	}
}

// ShouldPruneRules defaults to true when unset.
func (m MiningConfig) ShouldPruneRules() bool {
	return m.PruneRules == nil || *m.PruneRules
}

// SupportCount resolves the single count threshold used by mining for numTrans transactions.
func (m MiningConfig) SupportCount(numTrans int) int {
	if m.MinSupportCount > 0 {
		return m.MinSupportCount
	}
	return eclat.SupportCountFromFraction(m.MinSupport, numTrans)
}

func (m MiningConfig) Validate() error {
	if m.MinSupport < 0 || m.MinSupport > 1 {
		return fmt.Errorf("min_support must be a fraction in [0, 1], got %v", m.MinSupport)
	}
	if m.MinSupportCount < 0 {
		return fmt.Errorf("min_support_count must not be negative, got %d", m.MinSupportCount)
	}
	if m.MinSupport > 0 && m.MinSupportCount > 0 {
		return errors.New("min_support and min_support_count are mutually exclusive")
	}
	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %v", m.MinConfidence)
	}
	if m.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", m.Workers)
	}
	return nil
}

func (s ScoringConfig) Validate() error {
	if s.ConfidenceWeight < 0 || s.LiftWeight < 0 || s.LeverageWeight < 0 || s.JaccardWeight < 0 {
		return errors.New("scoring weights must not be negative")
	}
	if s.PriceTieBreak != PriceTieBreakDesc && s.PriceTieBreak != PriceTieBreakAsc {
		return fmt.Errorf("invalid price_tie_break %q", s.PriceTieBreak)
	}
	return nil
}

func isValidEnv(env string) bool {
	return env == DEVELOPMENT || env == STAGING || env == PRODUCTION
}

func isValidCloudProvider(p string) bool {
	return p == CloudProviderDisk || p == CloudProviderGCS || p == CloudProviderS3
}

func (c *Configuration) Validate() error {
	if !isValidEnv(c.Env) {
		return errors.New("Invalid Environment")
	}
	if !isValidCloudProvider(c.CloudProvider) {
		return errors.New("Invalid CloudProvider")
	}
	if c.BucketName == "" {
		return errors.New("Invalid BucketName")
	}
	if err := c.Mining.Validate(); err != nil {
		return err
	}
	return c.Scoring.Validate()
}

func (c *Configuration) IsDevelopment() bool {
	return c.Env == DEVELOPMENT
}

// LoadFromFile merges a json config file over the defaults.
func LoadFromFile(configFilePath string) (Configuration, error) {
	conf := Default()
	if configFilePath == "" {
		return conf, nil
	}

	configFileAbsPath, _ := filepath.Abs(configFilePath)
	logCtx := log.WithFields(log.Fields{
		"file": configFileAbsPath,
	})

	raw, err := ioutil.ReadFile(configFileAbsPath)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load config")
		return conf, err
	}

	var fileConf Configuration
	if err := json.Unmarshal(raw, &fileConf); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal json")
		return conf, err
	}

	// support is count xor fraction, a count in the file replaces the default fraction
	if fileConf.Mining.MinSupportCount > 0 && fileConf.Mining.MinSupport == 0 {
		conf.Mining.MinSupport = 0
	}
	if err := mergo.Merge(&conf, fileConf, mergo.WithOverride); err != nil {
		logCtx.WithError(err).Error("Failed to merge config")
		return conf, err
	}
	logCtx.WithFields(log.Fields{"config": conf}).Info("Config File Loaded")
	return conf, nil
}

// ApplyEnv overrides fields from RECOMMENDER_* environment variables,
// e.g. RECOMMENDER_MINING_MIN_SUPPORT_COUNT=2.
func ApplyEnv(conf *Configuration) error {
	count := conf.Mining.MinSupportCount
	if err := envconfig.Process(EnvPrefix, conf); err != nil {
		return err
	}
	if conf.Mining.MinSupportCount != count && conf.Mining.MinSupportCount > 0 {
		conf.Mining.MinSupport = 0
	}
	return nil
}

// Load reads defaults, then the config file, then the environment, and validates.
func Load(configFilePath string) (Configuration, error) {
	conf, err := LoadFromFile(configFilePath)
	if err != nil {
		return conf, err
	}
	if err := ApplyEnv(&conf); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

func InitLogging(env string) {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})
	log.SetReportCaller(true)

	if env == DEVELOPMENT {
		log.SetLevel(log.DebugLevel)
	}
}
