package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// DefaultSummarizeFunction is the summarization function name in the Lambda deployment.
const DefaultSummarizeFunction = "bedrock-handler"

// Invoker hands extracted text to the summarization stage and waits for its answer.
type Invoker interface {
	InvokeSummarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error)
}

type lambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaInvoker calls the summarization function synchronously.
type LambdaInvoker struct {
	api      lambdaAPI
	function string
}

// NewLambdaInvoker targets function, a name or ARN.
func NewLambdaInvoker(cfg aws.Config, function string) *LambdaInvoker {
	return &LambdaInvoker{api: lambda.NewFromConfig(cfg), function: function}
}

func (l *LambdaInvoker) InvokeSummarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return SummarizeResponse{}, fmt.Errorf("encode payload: %w", err)
	}
	out, err := l.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.function),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return SummarizeResponse{}, fmt.Errorf("invoke %s: %w", l.function, err)
	}
	if out.FunctionError != nil {
		return SummarizeResponse{}, fmt.Errorf("invoke %s: function error %s: %s", l.function, aws.ToString(out.FunctionError), string(out.Payload))
	}
	var resp SummarizeResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return SummarizeResponse{}, fmt.Errorf("decode %s response: %w", l.function, err)
	}
	return resp, nil
}

// LocalInvoker runs the summarizer in the same process.
type LocalInvoker struct {
	Summarizer *Summarizer
}

func (l LocalInvoker) InvokeSummarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	return l.Summarizer.Handle(ctx, req), nil
}

var (
	_ Invoker = (*LambdaInvoker)(nil)
	_ Invoker = LocalInvoker{}
)
