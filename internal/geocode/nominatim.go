package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// ErrRateLimited signals that the geocoding service rejected the call for
// exceeding its rate limit. The caller's backoff path handles it; it is never
// retried inside the client.
var ErrRateLimited = errors.New("geocode: rate limited")

const nominatimTimeout = 10 * time.Second

// Nominatim reverse-geocodes against a Nominatim-compatible HTTP endpoint.
// The public instance requires an identifying User-Agent, so contact must
// name the operator.
type Nominatim struct {
	client *resty.Client
}

func NewNominatim(baseURL, contact string) *Nominatim {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "photoroll/1.0 ("+contact+")").
		SetHeader("Accept", "application/json").
		SetTimeout(nominatimTimeout)

	return &Nominatim{client: client}
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		Country string `json:"country"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
	} `json:"address"`
}

// ReverseGeocode resolves lat/lon to place names, retrying transient network
// and server errors with exponential backoff. A rate-limit response or client
// error is returned immediately. An "unable to geocode" body (open ocean) is
// an empty result, not a failure.
func (n *Nominatim) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	var out reverseResponse

	attempt := func() error {
		resp, err := n.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"lat":    strconv.FormatFloat(lat, 'f', 6, 64),
				"lon":    strconv.FormatFloat(lon, 'f', 6, 64),
				"format": "jsonv2",
				"zoom":   "10",
			}).
			SetResult(&out).
			Get("/reverse")
		if err != nil {
			return fmt.Errorf("geocode: reverse request: %w", err)
		}

		switch {
		case resp.StatusCode() == http.StatusTooManyRequests:
			return backoff.Permanent(ErrRateLimited)
		case resp.StatusCode() >= http.StatusInternalServerError:
			return fmt.Errorf("geocode: server status %d", resp.StatusCode())
		case resp.IsError():
			return backoff.Permanent(fmt.Errorf("geocode: status %d: %s", resp.StatusCode(), resp.String()))
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.Multiplier = 2

	if err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(exp, 2), ctx)); err != nil {
		return Place{}, err
	}

	if out.Error != "" {
		return Place{}, nil
	}

	city := out.Address.City
	if city == "" {
		city = out.Address.Town
	}
	if city == "" {
		city = out.Address.Village
	}

	return Place{
		Country:   out.Address.Country,
		City:      city,
		Subregion: out.Address.County,
	}, nil
}

var _ Geocoder = (*Nominatim)(nil)
