package http

import (
	"fmt"
	"net/http"
	"strconv"

	"saldo/internal/core"
	"saldo/internal/forecast"
	"saldo/internal/services"
)

// maxHorizonMonths caps the projection window a client may request.
const maxHorizonMonths = 60

// parseForecastQuery reads the common forecast query parameters:
// account (required), months, mode and today.
func parseForecastQuery(r *http.Request) (string, services.ForecastOptions, error) {
	q := r.URL.Query()

	accountID := q.Get("account")
	if accountID == "" {
		return "", services.ForecastOptions{}, fmt.Errorf("missing account parameter")
	}

	var opts services.ForecastOptions
	if raw := q.Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months < 1 || months > maxHorizonMonths {
			return "", services.ForecastOptions{}, fmt.Errorf("invalid months %q: must be 1-%d", raw, maxHorizonMonths)
		}
		opts.Months = months
	}

	switch mode := q.Get("mode"); mode {
	case "":
		// Service default applies.
	case string(forecast.ModeLatest), string(forecast.ModeSegments):
		opts.Mode = forecast.Mode(mode)
	default:
		return "", services.ForecastOptions{}, fmt.Errorf("invalid mode %q", mode)
	}

	if raw := q.Get("today"); raw != "" {
		today, err := core.ParseDate(raw)
		if err != nil {
			return "", services.ForecastOptions{}, fmt.Errorf("invalid today %q: want YYYY-MM-DD", raw)
		}
		opts.Today = today
	}

	return accountID, opts, nil
}

// requireAccountQuery reads the account query parameter shared by the
// event and snapshot listings.
func requireAccountQuery(r *http.Request) (string, error) {
	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		return "", fmt.Errorf("missing account parameter")
	}
	return accountID, nil
}
