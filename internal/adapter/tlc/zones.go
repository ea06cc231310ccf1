package tlc

import (
	"context"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

// FetchZones downloads and decodes the taxi zone lookup CSV.
func (c *Client) FetchZones(ctx context.Context, url string) ([]models.Zone, error) {
	ctx = wrap.WithAction(ctx, types.ActionFetch)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("read zones: %w", err))
	}

	zones, err := decodeZones(data)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	c.log.Debug(ctx, "fetched zone lookup", "zones", len(zones))
	return zones, nil
}

func decodeZones(data []byte) ([]models.Zone, error) {
	var zones []models.Zone
	if err := csvutil.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("%w: zones: %v", types.ErrMalformedFile, err)
	}
	return zones, nil
}
