package recommendserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	client "recommender/recommend_client"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc"
	rpcjson "github.com/gorilla/rpc/json"
	log "github.com/sirupsen/logrus"
)

const headerStartedAt = "Started-At"

func getReqId(r *http.Request) string {
	if len(r.Header[client.HeaderRequestId]) > 0 {
		return r.Header[client.HeaderRequestId][0]
	}
	return ""
}

// InitRpcServer registers rs as the json-rpc service behind client.RPCEndpoint.
func InitRpcServer(rs *RecommendServer) *mux.Router {
	s := rpc.NewServer()
	s.RegisterCodec(rpcjson.NewCodec(), "application/json")
	s.RegisterCodec(rpcjson.NewCodec(), "application/json;charset=UTF-8")
	if err := s.RegisterService(rs, client.RPCServiceName); err != nil {
		log.WithError(err).Fatal("Failed to register rpc service")
	}
	s.RegisterBeforeFunc(func(i *rpc.RequestInfo) {
		startedAt := time.Now().UnixNano()
		i.Request.Header[headerStartedAt] = []string{fmt.Sprintf("%v", startedAt)}

		log.WithFields(log.Fields{
			"reqId":  getReqId(i.Request),
			"method": i.Method,
		}).Info("Seen Request")
	})
	s.RegisterAfterFunc(func(i *rpc.RequestInfo) {
		startedAt := time.Now().UnixNano()
		if len(i.Request.Header[headerStartedAt]) > 0 {
			startedAt, _ = strconv.ParseInt(i.Request.Header[headerStartedAt][0], 10, 64)
		}
		latency := time.Now().UnixNano() - startedAt

		logCtx := log.WithFields(log.Fields{
			"reqId":       getReqId(i.Request),
			"method":      i.Method,
			"latency(ms)": int(math.Ceil(float64(latency) / 1000000.0)),
			"statusCode":  i.StatusCode,
		})
		if i.Error != nil {
			logCtx.WithError(i.Error).Error("Error Processing Request")
		} else {
			logCtx.Info("Processed Request")
		}
	})
	r := mux.NewRouter()
	r.Handle(client.RPCEndpoint, s)
	return r
}

func InitHttpStatusServer(isDev bool, rs *RecommendServer) *gin.Engine {
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.GET("/state", rs.DebugState)
	r.GET("/rules", rs.GetTopRules)
	r.GET("/status", func(c *gin.Context) {
		resp := map[string]string{
			"status": "success",
		}
		c.JSON(http.StatusOK, resp)
	})
	return r
}
