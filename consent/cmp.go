package consent

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// SourceCmpError marks consent data produced because the page's CMP could not be read.
const SourceCmpError = "cmp-error"

// CmpClient reads the consent management platform of the page.
type CmpClient interface {
	ConsentData(ctx context.Context) (Data, error)
}

// CmpClientFunc adapts a function to CmpClient.
type CmpClientFunc func(ctx context.Context) (Data, error)

func (f CmpClientFunc) ConsentData(ctx context.Context) (Data, error) {
	return f(ctx)
}

// Lookup reads c. A CMP failure is logged and resolves to data without any consent API so that the
// page is treated as having no consent signal instead of blocking forever.
func Lookup(ctx context.Context, c CmpClient, logger log.Logger) Data {
	d, err := c.ConsentData(ctx)
	if err != nil {
		level.Warn(logger).Log("msg", "consent lookup failed", "err", err)
		return Data{APIs: []API{APINone}, Source: SourceCmpError}
	}
	return d
}
