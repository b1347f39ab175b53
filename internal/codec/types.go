package codec

import (
	"context"

	"github.com/danmackay/relation-probe/go-sweep/internal/tokens"
)

// #region request-response

// TokenizeRequest asks the sidecar to tokenize a batch of prompts together,
// padded to the longest sequence, with character offset mappings.
type TokenizeRequest struct {
	Prompts []string `json:"prompts"`
}

// TokenizedPrompt is one prompt's token ids, attention mask, and offsets.
// All three slices share the padded length of the batch.
type TokenizedPrompt struct {
	IDs     []int64         `json:"ids"`
	Mask    []int32         `json:"mask"`
	Offsets []tokens.Offset `json:"offsets"`
}

// TokenizeResponse holds one TokenizedPrompt per input prompt, in order.
type TokenizeResponse struct {
	Prompts []TokenizedPrompt `json:"prompts"`
}

// ForwardRequest runs a forward pass over a batch of padded token sequences.
type ForwardRequest struct {
	IDs  [][]int64 `json:"ids"`
	Mask [][]int32 `json:"mask"`
}

// ForwardResponse carries hidden states for every transformer layer at every
// position: HiddenStates[prompt][layer][position] is one hidden vector. The
// embedding layer is excluded, so layer indices are 0-based transformer
// layers.
type ForwardResponse struct {
	HiddenStates [][][][]float32 `json:"hidden_states"`
}

// ModelInfoRequest asks for static model metadata.
type ModelInfoRequest struct{}

// ModelInfoResponse describes the loaded model.
type ModelInfoResponse struct {
	Model     string `json:"model"`
	NumLayers int    `json:"num_layers"`
	HiddenDim int    `json:"hidden_dim"`
}

// EstimateOperatorRequest fits a linear relation operator server-side at one
// layer from the given training pairs and prompt template.
type EstimateOperatorRequest struct {
	Layer          int      `json:"layer"`
	PromptTemplate string   `json:"prompt_template"`
	Subjects       []string `json:"subjects"`
	Objects        []string `json:"objects"`
}

// EstimateOperatorResponse returns the fitted weight matrix (row-major) and
// bias vector.
type EstimateOperatorResponse struct {
	Weight [][]float32 `json:"weight"`
	Bias   []float32   `json:"bias"`
}

// DecodeTopKRequest decodes a hidden-space vector through the LM head.
type DecodeTopKRequest struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
}

// DecodeTopKResponse holds the top-k decoded tokens, best first.
type DecodeTopKResponse struct {
	Tokens []string  `json:"tokens"`
	Scores []float32 `json:"scores"`
}

// #endregion request-response

// #region service-interface

// ServiceClient is the sidecar's RPC surface. Tests inject fakes through
// NewClientWithService.
type ServiceClient interface {
	Tokenize(ctx context.Context, in *TokenizeRequest) (*TokenizeResponse, error)
	Forward(ctx context.Context, in *ForwardRequest) (*ForwardResponse, error)
	ModelInfo(ctx context.Context, in *ModelInfoRequest) (*ModelInfoResponse, error)
	EstimateOperator(ctx context.Context, in *EstimateOperatorRequest) (*EstimateOperatorResponse, error)
	DecodeTopK(ctx context.Context, in *DecodeTopKRequest) (*DecodeTopKResponse, error)
}

// #endregion service-interface
