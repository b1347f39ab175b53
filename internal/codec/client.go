package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// #region results

// Info holds static metadata about the sidecar's loaded model.
type Info struct {
	Model     string
	NumLayers int
	HiddenDim int
}

// TokenScore is one decoded token with its LM-head score.
type TokenScore struct {
	Token string
	Score float32
}

// #endregion results

// #region grpc-service

const (
	methodTokenize         = "/relations.Inference/Tokenize"
	methodForward          = "/relations.Inference/Forward"
	methodModelInfo        = "/relations.Inference/ModelInfo"
	methodEstimateOperator = "/relations.Inference/EstimateOperator"
	methodDecodeTopK       = "/relations.Inference/DecodeTopK"
)

// grpcService implements ServiceClient over a ClientConn with hand-written
// unary invocations.
type grpcService struct {
	conn *grpc.ClientConn
}

func (s *grpcService) Tokenize(ctx context.Context, in *TokenizeRequest) (*TokenizeResponse, error) {
	out := new(TokenizeResponse)
	if err := s.conn.Invoke(ctx, methodTokenize, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Forward(ctx context.Context, in *ForwardRequest) (*ForwardResponse, error) {
	out := new(ForwardResponse)
	if err := s.conn.Invoke(ctx, methodForward, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) ModelInfo(ctx context.Context, in *ModelInfoRequest) (*ModelInfoResponse, error) {
	out := new(ModelInfoResponse)
	if err := s.conn.Invoke(ctx, methodModelInfo, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) EstimateOperator(ctx context.Context, in *EstimateOperatorRequest) (*EstimateOperatorResponse, error) {
	out := new(EstimateOperatorResponse)
	if err := s.conn.Invoke(ctx, methodEstimateOperator, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) DecodeTopK(ctx context.Context, in *DecodeTopKRequest) (*DecodeTopKResponse, error) {
	out := new(DecodeTopKResponse)
	if err := s.conn.Invoke(ctx, methodDecodeTopK, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion grpc-service

// #region client-struct

// Client wraps the gRPC connection to the Python inference sidecar.
type Client struct {
	conn   *grpc.ClientConn
	client ServiceClient
}

// #endregion client-struct

// #region constructor

// NewClient connects to the inference sidecar.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: &grpcService{conn: conn},
	}, nil
}

// NewClientWithService creates a Client with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewClientWithService(svc ServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region tokenize

// Tokenize tokenizes prompts as one batch, padded to the longest sequence,
// with a character offset mapping per token.
func (c *Client) Tokenize(ctx context.Context, prompts []string) ([]TokenizedPrompt, error) {
	resp, err := c.client.Tokenize(ctx, &TokenizeRequest{Prompts: prompts})
	if err != nil {
		return nil, fmt.Errorf("tokenize rpc: %w", err)
	}
	if len(resp.Prompts) != len(prompts) {
		return nil, fmt.Errorf("tokenize rpc: got %d results for %d prompts",
			len(resp.Prompts), len(prompts))
	}
	return resp.Prompts, nil
}

// #endregion tokenize

// #region forward

// Forward runs one inference batch and returns, per prompt, the hidden state
// of every transformer layer at every position (embedding layer excluded).
func (c *Client) Forward(ctx context.Context, ids [][]int64, mask [][]int32) ([][][][]float32, error) {
	resp, err := c.client.Forward(ctx, &ForwardRequest{IDs: ids, Mask: mask})
	if err != nil {
		return nil, fmt.Errorf("forward rpc: %w", err)
	}
	if len(resp.HiddenStates) != len(ids) {
		return nil, fmt.Errorf("forward rpc: got hidden states for %d of %d prompts",
			len(resp.HiddenStates), len(ids))
	}
	return resp.HiddenStates, nil
}

// #endregion forward

// #region model-info

// ModelInfo reports the sidecar model's layer count and hidden dimension.
func (c *Client) ModelInfo(ctx context.Context) (Info, error) {
	resp, err := c.client.ModelInfo(ctx, &ModelInfoRequest{})
	if err != nil {
		return Info{}, fmt.Errorf("model info rpc: %w", err)
	}
	return Info{
		Model:     resp.Model,
		NumLayers: resp.NumLayers,
		HiddenDim: resp.HiddenDim,
	}, nil
}

// #endregion model-info

// #region estimate-operator

// EstimateOperator fits a linear relation operator at the given layer from
// the training pairs, server-side, and returns its weight and bias.
func (c *Client) EstimateOperator(ctx context.Context, layer int, template string, subjects, objects []string) ([][]float32, []float32, error) {
	resp, err := c.client.EstimateOperator(ctx, &EstimateOperatorRequest{
		Layer:          layer,
		PromptTemplate: template,
		Subjects:       subjects,
		Objects:        objects,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("estimate operator rpc: %w", err)
	}
	return resp.Weight, resp.Bias, nil
}

// #endregion estimate-operator

// #region decode-top-k

// DecodeTopK decodes a hidden-space vector through the LM head and returns
// the k best tokens, best first.
func (c *Client) DecodeTopK(ctx context.Context, vec []float32, k int) ([]TokenScore, error) {
	resp, err := c.client.DecodeTopK(ctx, &DecodeTopKRequest{Vector: vec, K: k})
	if err != nil {
		return nil, fmt.Errorf("decode top-k rpc: %w", err)
	}
	out := make([]TokenScore, len(resp.Tokens))
	for i, tok := range resp.Tokens {
		out[i] = TokenScore{Token: tok}
		if i < len(resp.Scores) {
			out[i].Score = resp.Scores[i]
		}
	}
	return out, nil
}

// #endregion decode-top-k
