package upload

import (
	"context"

	"leafscan/internal/errors"
	"leafscan/pkg/types"
)

// Request is one Analyzing-phase entry: a token and the file to classify.
type Request struct {
	Token string
	File  *types.UploadedFile

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the machine leaves Analyzing for this request
func (r *Request) Context() context.Context {
	return r.ctx
}

// Do performs the network call. It does not touch machine state and may run
// off the event loop.
func (r *Request) Do(p Predictor) Outcome {
	result, err := p.Predict(r.ctx, r.File)
	if err == nil && result == nil {
		err = errors.NewTransportError("empty prediction result", errors.MalformedResponse, nil)
	}
	return Outcome{Token: r.Token, Result: result, Err: err}
}

// Outcome is the result of a request, delivered back through Machine.Complete
type Outcome struct {
	Token  string
	Result *types.PredictionResult
	Err    error
}
