package request

import (
	"context"
	"encoding/json"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// Do performs d and decodes the canonical data into T. Absent or null data
// leaves T at its zero value. A decode failure is reported like any other
// failure.
func Do[T any](ctx context.Context, c *Client, d Descriptor) (T, error) {
	var out T

	data, err := c.Request(ctx, d)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		info := domain.NewErrorInfo(domain.ErrorTypeUnknown, "响应数据解析失败").
			WithDetails(err.Error()).
			WithURL(d.URL).
			WithRetry(false).
			WithCause(err)
		c.reporter.Report(ctx, info)
		return out, info
	}
	return out, nil
}

// Exec performs d and discards the data.
func Exec(ctx context.Context, c *Client, d Descriptor) error {
	_, err := c.Request(ctx, d)
	return err
}
