// Package gateway wraps the Storage Gateway API surface the tape
// lifecycle engine consumes: a retrying client with bounded exponential
// backoff, a typed error taxonomy, and a gateway directory that resolves
// which gateway owns a tape.
package gateway

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/storagegateway"
)

// API is the subset of the Storage Gateway client the engine uses.
// *storagegateway.Client satisfies it; tests substitute a fake.
type API interface {
	ListTapes(ctx context.Context, params *storagegateway.ListTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListTapesOutput, error)
	ListGateways(ctx context.Context, params *storagegateway.ListGatewaysInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListGatewaysOutput, error)
	DescribeTapes(ctx context.Context, params *storagegateway.DescribeTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DescribeTapesOutput, error)
	DeleteTape(ctx context.Context, params *storagegateway.DeleteTapeInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeOutput, error)
	DeleteTapeArchive(ctx context.Context, params *storagegateway.DeleteTapeArchiveInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeArchiveOutput, error)
}
