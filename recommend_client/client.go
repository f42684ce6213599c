package recommendclient

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	rpcJson "github.com/gorilla/rpc/json"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	RPCServiceName             = "rs"
	RPCEndpoint                = "/rpc"
	OperationNameTrain         = "Train"
	OperationNameRecommend     = "Recommend"
	OperationNameLoadModel     = "LoadModel"
	OperationNameGetModelInfo  = "GetModelInfo"
	Separator                  = "."
	DefaultTimeoutSeconds      = 600
	HeaderRequestId            = "X-Req-Id"
	HeaderContentType          = "content-type"
	ContentTypeApplicationJSON = "application/json"
)

// GenericRPCResp is embedded in every response. Error carries the message of a
// failed call that the server chose to report in the result.
type GenericRPCResp struct {
	ModelId string `json:"mid"`
	Ignored bool   `json:"ignored"`
	Error   string `json:"error,omitempty"`
}

// ModelInfo mirrors recommender.ModelInfo on the wire.
type ModelInfo struct {
	Id              string  `json:"id"`
	TrainedAt       int64   `json:"trained_at"`
	NumItems        int     `json:"num_items"`
	NumTransactions int     `json:"num_transactions"`
	MinSupportCount int     `json:"min_support_count"`
	MinConfidence   float64 `json:"min_confidence"`
	NumItemsets     int     `json:"num_itemsets"`
	NumRules        int     `json:"num_rules"`
}

// TrainRequest trains either on a stored Dataset or on inline Prices and Transactions.
type TrainRequest struct {
	Dataset      string            `json:"ds"`
	Prices       []decimal.Decimal `json:"p"`
	Transactions [][]int           `json:"t"`
	Persist      bool              `json:"persist"`
}

type TrainResponse struct {
	GenericRPCResp
	ModelInfo ModelInfo `json:"mi"`
}

type RecommendRequest struct {
	Cart               []int `json:"c"`
	MaxRecommendations int   `json:"k"`
}

type RecommendResponse struct {
	GenericRPCResp
	Items []int `json:"is"`
}

type LoadModelRequest struct {
	ModelId string `json:"mid"`
}

type LoadModelResponse struct {
	GenericRPCResp
	ModelInfo ModelInfo `json:"mi"`
}

type GetModelInfoRequest struct{}

type GetModelInfoResponse struct {
	GenericRPCResp
	ModelInfo ModelInfo `json:"mi"`
}

// Client talks to one recommend server.
type Client struct {
	addr       string
	httpClient *http.Client
}

func New(serverAddr string) *Client {
	return &Client{
		addr: serverAddr,
		httpClient: &http.Client{
			Timeout: time.Duration(DefaultTimeoutSeconds * time.Second),
		},
	}
}

func NewReqId() string {
	return uuid.New().String()
}

func (c *Client) call(reqId, operation string, params, result interface{}) error {
	if reqId == "" {
		reqId = NewReqId()
	}
	paramBytes, err := rpcJson.EncodeClientRequest(RPCServiceName+Separator+operation, params)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s%s", c.addr, RPCEndpoint)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(paramBytes))
	if err != nil {
		return err
	}
	req.Header.Add(HeaderContentType, ContentTypeApplicationJSON)
	req.Header.Add(HeaderRequestId, reqId)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithFields(log.Fields{"reqId": reqId, "op": operation}).WithError(err).Error("RPC request failed")
		return err
	}
	defer resp.Body.Close()

	return rpcJson.DecodeClientResponse(resp.Body, result)
}

func resultError(generic GenericRPCResp) error {
	if generic.Error != "" {
		return errors.New(generic.Error)
	}
	return nil
}

func (c *Client) Train(reqId string, args TrainRequest) (ModelInfo, error) {
	var result TrainResponse
	if err := c.call(reqId, OperationNameTrain, &args, &result); err != nil {
		return ModelInfo{}, err
	}
	return result.ModelInfo, resultError(result.GenericRPCResp)
}

func (c *Client) Recommend(reqId string, cart []int, maxRecommendations int) ([]int, error) {
	var result RecommendResponse
	args := RecommendRequest{Cart: cart, MaxRecommendations: maxRecommendations}
	if err := c.call(reqId, OperationNameRecommend, &args, &result); err != nil {
		return nil, err
	}
	if err := resultError(result.GenericRPCResp); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []int{}
	}
	return result.Items, nil
}

func (c *Client) LoadModel(reqId, modelId string) (ModelInfo, error) {
	var result LoadModelResponse
	args := LoadModelRequest{ModelId: modelId}
	if err := c.call(reqId, OperationNameLoadModel, &args, &result); err != nil {
		return ModelInfo{}, err
	}
	return result.ModelInfo, resultError(result.GenericRPCResp)
}

func (c *Client) GetModelInfo(reqId string) (ModelInfo, error) {
	var result GetModelInfoResponse
	if err := c.call(reqId, OperationNameGetModelInfo, &GetModelInfoRequest{}, &result); err != nil {
		return ModelInfo{}, err
	}
	return result.ModelInfo, resultError(result.GenericRPCResp)
}
