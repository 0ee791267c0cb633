package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/storagegateway"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

const pageLimit = 100

// ProbeObserver counts gateway probes made during tape resolution.
// Implemented by the metrics collector; nil disables observation.
type ProbeObserver interface {
	ObserveResolutionProbe(hit bool)
}

// Directory discovers the gateways in a region and resolves which
// gateway owns a given tape.
//
// A tape's ARN does not encode its owning gateway, and DescribeTapes
// requires a gateway scope, so resolution is trial discovery: probe each
// cached gateway in discovery order and take the first whose detail
// lookup recognizes the tape. This is a documented workaround for the
// API limitation and the most expensive part of the engine, O(#gateways)
// calls per unresolved tape; resolutions are therefore cached for the
// rest of the run.
type Directory struct {
	client   *Client
	region   string
	logger   *slog.Logger
	observer ProbeObserver

	gateways []vtl.Gateway // populated on first Gateways call
	listed   bool
	resolved map[string]vtl.Gateway // tape ARN -> owning gateway
}

// NewDirectory creates a directory over the retrying client.
func NewDirectory(client *Client, region string, logger *slog.Logger, observer ProbeObserver) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		client:   client,
		region:   region,
		logger:   logger.With("component", "gateway.directory"),
		observer: observer,
		resolved: make(map[string]vtl.Gateway),
	}
}

// Gateways returns the gateways in the region, listing them from the
// service on first use and serving the cached set afterwards. The cache
// is read-only after population.
func (d *Directory) Gateways(ctx context.Context) ([]vtl.Gateway, error) {
	if d.listed {
		return d.gateways, nil
	}

	var gateways []vtl.Gateway
	var marker *string
	for {
		out, err := d.client.ListGateways(ctx, &storagegateway.ListGatewaysInput{
			Limit:  aws.Int32(pageLimit),
			Marker: marker,
		})
		if err != nil {
			return nil, err
		}
		for _, gw := range out.Gateways {
			arn := aws.ToString(gw.GatewayARN)
			if arn == "" {
				continue
			}
			gateways = append(gateways, vtl.Gateway{
				ARN:    arn,
				Name:   aws.ToString(gw.GatewayName),
				Type:   aws.ToString(gw.GatewayType),
				State:  aws.ToString(gw.GatewayOperationalState),
				Region: d.region,
			})
		}
		marker = out.Marker
		if marker == nil {
			break
		}
	}

	d.gateways = gateways
	d.listed = true
	d.logger.Info("discovered gateways", "region", d.region, "count", len(gateways))
	return d.gateways, nil
}

// ResolveTape finds the gateway that owns the tape. It probes each
// discovered gateway in order and short-circuits on the first hit; a
// tape no gateway recognizes yields a NotFoundError so the caller can
// report it rather than drop it. Permission failures abort immediately.
func (d *Directory) ResolveTape(ctx context.Context, tape vtl.Tape) (vtl.Gateway, error) {
	if gw, ok := d.resolved[tape.ARN]; ok {
		return gw, nil
	}

	gateways, err := d.Gateways(ctx)
	if err != nil {
		return vtl.Gateway{}, err
	}

	for _, gw := range gateways {
		out, err := d.client.DescribeTapes(ctx, &storagegateway.DescribeTapesInput{
			GatewayARN: aws.String(gw.ARN),
			TapeARNs:   []string{tape.ARN},
		})
		if err != nil {
			var perm *PermissionError
			if errors.As(err, &perm) {
				return vtl.Gateway{}, perm
			}
			if ctx.Err() != nil {
				return vtl.Gateway{}, ctx.Err()
			}
			// This gateway does not know the tape; try the next one.
			d.observeProbe(false)
			d.logger.Debug("gateway probe missed",
				"gateway", gw.ARN, "tape", tape.Barcode, "error", err)
			continue
		}
		if len(out.Tapes) > 0 {
			d.observeProbe(true)
			d.resolved[tape.ARN] = gw
			return gw, nil
		}
		d.observeProbe(false)
	}

	return vtl.Gateway{}, &NotFoundError{Resource: "gateway", ID: tape.ARN}
}

// Describe fetches detailed tape records scoped to one gateway.
func (d *Directory) Describe(ctx context.Context, gatewayARN string, tapeARNs []string) ([]vtl.Tape, error) {
	out, err := d.client.DescribeTapes(ctx, &storagegateway.DescribeTapesInput{
		GatewayARN: aws.String(gatewayARN),
		TapeARNs:   tapeARNs,
	})
	if err != nil {
		return nil, err
	}
	tapes := make([]vtl.Tape, 0, len(out.Tapes))
	for _, t := range out.Tapes {
		tapes = append(tapes, vtl.Tape{
			Barcode:    aws.ToString(t.TapeBarcode),
			ARN:        aws.ToString(t.TapeARN),
			Status:     vtl.ParseStatus(aws.ToString(t.TapeStatus)),
			CreatedAt:  t.TapeCreatedDate,
			SizeBytes:  aws.ToInt64(t.TapeSizeInBytes),
			UsedBytes:  aws.ToInt64(t.TapeUsedInBytes),
			GatewayARN: gatewayARN,
			PoolID:     aws.ToString(t.PoolId),
		})
	}
	return tapes, nil
}

func (d *Directory) observeProbe(hit bool) {
	if d.observer != nil {
		d.observer.ObserveResolutionProbe(hit)
	}
}
