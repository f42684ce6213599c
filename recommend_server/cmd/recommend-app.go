package main

import (
	"flag"
	"net/http"

	"recommender/cache/redis"
	"recommender/config"
	"recommender/metrics"
	recommendserver "recommender/recommend_server"
	"recommender/services"
	"recommender/store"

	log "github.com/sirupsen/logrus"
)

const appName = "recommend_server"

func main() {
	configFile := flag.String("config", "", "Optional: json config file, merged over the defaults")
	env := flag.String("env", "", "Optional: overrides env of the config")
	ip := flag.String("ip", "", "")
	rpcPort := flag.String("rs_rpc_port", "", "")
	httpPort := flag.String("rs_http_port", "", "")
	diskBaseDir := flag.String("disk_dir", "", "")
	bucketName := flag.String("bucket_name", "", "")
	cloudProvider := flag.String("cloud_provider", "", "disk, gcs or s3")
	redisHost := flag.String("redis_host", "", "Optional: enables the shared recommendation cache")
	dataset := flag.String("dataset", "", "Optional: dataset to train on at startup")
	persist := flag.Bool("persist", false, "Persist the model trained at startup")
	modelId := flag.String("model_id", "", "Optional: persisted model to load at startup")

	flag.Parse()

	conf, err := config.LoadFromFile(*configFile)
	if err != nil {
		panic(err)
	}
	overrideString(&conf.Env, *env)
	overrideString(&conf.IP, *ip)
	overrideString(&conf.RPCPort, *rpcPort)
	overrideString(&conf.HTTPPort, *httpPort)
	overrideString(&conf.DiskBaseDir, *diskBaseDir)
	overrideString(&conf.BucketName, *bucketName)
	overrideString(&conf.CloudProvider, *cloudProvider)
	overrideString(&conf.Redis.Host, *redisHost)
	if err := config.ApplyEnv(&conf); err != nil {
		panic(err)
	}
	if err := conf.Validate(); err != nil {
		panic(err)
	}
	if *dataset != "" && *modelId != "" {
		panic("only one of dataset and model_id can be given")
	}

	config.InitLogging(conf.Env)
	log.WithFields(log.Fields{
		"IP":            conf.IP,
		"RPCPort":       conf.RPCPort,
		"HTTPPort":      conf.HTTPPort,
		"Env":           conf.Env,
		"DiskBaseDir":   conf.DiskBaseDir,
		"BucketName":    conf.BucketName,
		"CloudProvider": conf.CloudProvider,
		"Mining":        conf.Mining,
		"Scoring":       conf.Scoring,
	}).Infoln("Initialising with config")

	if exporter := metrics.InitMetrics(conf.Env, appName, conf.MetricsProjectID, ""); exporter != nil {
		defer exporter.Flush()
	}
	redis.InitCacheRedis(conf.Redis)

	logCtx := log.WithFields(log.Fields{
		"IP":   conf.IP,
		"Port": conf.RPCPort,
	})

	diskManager, cloudManager, err := services.NewFileManagers(conf)
	if err != nil {
		logCtx.WithError(err).Errorln("Failed to init file managers")
		panic(err)
	}
	ms, err := store.New(conf.ModelCacheSize, diskManager, cloudManager)
	if err != nil {
		logCtx.WithError(err).Errorln("Failed to init New ModelStore")
		panic(err)
	}

	rs := recommendserver.New(conf, ms)
	if *dataset != "" {
		m, err := rs.TrainFromDataset(*dataset, *persist)
		if err != nil {
			logCtx.WithError(err).Errorln("Failed to train on startup dataset")
			panic(err)
		}
		logCtx.WithField("model", m.Info()).Infoln("Trained startup model")
	}
	if *modelId != "" {
		m, err := rs.LoadModelById(*modelId)
		if err != nil {
			logCtx.WithError(err).Errorln("Failed to load startup model")
			panic(err)
		}
		logCtx.WithField("model", m.Info()).Infoln("Loaded startup model")
	}

	go runHttpStatus(rs, conf.IsDevelopment())

	addr := rs.GetIp() + ":" + rs.GetRPCPort()
	logCtx.Printf("Starting rpc recommend server at %s", addr)
	r := recommendserver.InitRpcServer(rs)
	err = http.ListenAndServe(addr, r)
	if err != nil {
		panic(err)
	}
}

func overrideString(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func runHttpStatus(rs *recommendserver.RecommendServer, isDev bool) {
	r := recommendserver.InitHttpStatusServer(isDev, rs)
	addr := rs.GetIp() + ":" + rs.GetHTTPPort()
	if err := r.Run(addr); err != nil {
		log.WithError(err).Error("Status server stopped")
	}
}
