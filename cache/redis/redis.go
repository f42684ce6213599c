package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recommender/config"
	U "recommender/util"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

const (
	PrefixRecommendation = "recommendation"
)

type Key struct {
	// ModelID scopes every key, a new model never reads the previous model's entries.
	ModelID string
	// Prefix - Helps better grouping and searching
	Prefix string
	// Suffix - optional
	Suffix string
}

var (
	ErrorInvalidModel  = errors.New("invalid key model")
	ErrorInvalidPrefix = errors.New("invalid key prefix")
	ErrorInvalidKey    = errors.New("invalid redis cache key")
	ErrorNotConfigured = errors.New("redis cache not configured")
)

var pool *redis.Pool

// InitCacheRedis sets up the connection pool. Without a host the cache stays disabled.
func InitCacheRedis(conf config.RedisConf) {
	if conf.Host == "" {
		log.Info("Redis cache disabled, no host configured")
		return
	}
	address := fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	pool = &redis.Pool{
		MaxIdle:     50,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", address)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	log.WithField("address", address).Info("Redis cache initialized")
}

func IsEnabled() bool {
	return pool != nil
}

func getConnection() (redis.Conn, error) {
	if pool == nil {
		return nil, ErrorNotConfigured
	}
	return pool.Get(), nil
}

func NewKey(modelId, prefix, suffix string) (*Key, error) {
	if modelId == "" {
		return nil, ErrorInvalidModel
	}

	if prefix == "" {
		return nil, ErrorInvalidPrefix
	}

	return &Key{ModelID: modelId, Prefix: prefix, Suffix: suffix}, nil
}

// NewRecommendationKey keys a recommendation by model, normalized cart and requested size.
func NewRecommendationKey(modelId string, cart []int, maxRecommendations int) (*Key, error) {
	suffix := fmt.Sprintf("cart:%s:k:%d", U.IntsToString(U.SortedUniqueInts(cart), ","), maxRecommendations)
	return NewKey(modelId, PrefixRecommendation, suffix)
}

func (key *Key) Key() (string, error) {
	if key.ModelID == "" {
		return "", ErrorInvalidModel
	}

	if key.Prefix == "" {
		return "", ErrorInvalidPrefix
	}

	// key: i.e, recommendation:mid:cn0l2m8:cart:1,3:k:5
	return fmt.Sprintf("%s:mid:%s:%s", key.Prefix, key.ModelID, key.Suffix), nil
}

func Set(key *Key, value string, expiryInSecs float64) error {
	if key == nil {
		return ErrorInvalidKey
	}

	if value == "" {
		return errors.New("empty cache key value")
	}

	cKey, err := key.Key()
	if err != nil {
		return err
	}

	redisConn, err := getConnection()
	if err != nil {
		return err
	}
	defer redisConn.Close()

	if expiryInSecs == 0 {
		_, err = redisConn.Do("SET", cKey, value)
	} else {
		_, err = redisConn.Do("SET", cKey, value, "EX", expiryInSecs)
	}

	return err
}

func Get(key *Key) (string, error) {
	if key == nil {
		return "", ErrorInvalidKey
	}

	cKey, err := key.Key()
	if err != nil {
		return "", err
	}

	redisConn, err := getConnection()
	if err != nil {
		return "", err
	}
	defer redisConn.Close()

	return redis.String(redisConn.Do("GET", cKey))
}

// SetItems stores a recommendation list as json.
func SetItems(key *Key, items []int, expiryInSecs float64) error {
	enItems, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return Set(key, string(enItems), expiryInSecs)
}

// GetItems returns the cached list, found is false on a cache miss.
func GetItems(key *Key) ([]int, bool, error) {
	value, err := Get(key)
	if err == redis.ErrNil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []int
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}
