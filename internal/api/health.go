package api

import (
	"context"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
)

// HealthStatus is the backend's self-reported state.
type HealthStatus struct {
	Status  string
	Message string
}

// Health queries the backend's /healthcheck endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	endpoint := c.baseURL + "/healthcheck"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apierrors.NewTransportError(0, endpoint, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewTransportError(0, endpoint, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewTransportError(resp.StatusCode, endpoint, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewTransportError(resp.StatusCode, endpoint, "")
	}

	return &HealthStatus{
		Status:  gjson.GetBytes(body, "status").String(),
		Message: gjson.GetBytes(body, "message").String(),
	}, nil
}
