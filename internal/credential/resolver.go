// Package credential resolves which provider credential sets may serve a
// transaction right now: active sub-merchant rows for the merchant and
// provider whose schedule flag covers the current day class.
package credential

import (
	"fmt"
	"time"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/fee"
	mainmodel "launcx-order-api/internal/model/main"
	"launcx-order-api/internal/provider"
)

// ActiveCredential pairs an eligible sub-merchant row with its ready-to-use
// adapter.
type ActiveCredential struct {
	SubMerchant mainmodel.SubMerchant
	Client      provider.Client
}

type Resolver struct {
	MainDao *dao.MainDao
}

func NewResolver() *Resolver {
	return &Resolver{MainDao: dao.NewMainDao()}
}

// dayClass maps the instant to "weekday" or "weekend". forceSchedule, when
// set to either value, wins over the clock.
func dayClass(at time.Time, overrides fee.OverrideSet, forceSchedule *string) string {
	if forceSchedule != nil {
		switch *forceSchedule {
		case "weekday", "weekend":
			return *forceSchedule
		}
	}
	if fee.IsJakartaWeekend(at, overrides) {
		return "weekend"
	}
	return "weekday"
}

// ActiveProviders returns every eligible credential set for the merchant and
// provider at the given instant. Rows come back in database order; callers
// must not read meaning into the order and by convention take the first.
// Credential reshaping is fail-fast: one malformed row fails the whole
// resolution rather than silently skipping it.
func (r *Resolver) ActiveProviders(merchantID uint64, providerName string, at time.Time, overrides fee.OverrideSet, forceSchedule *string) ([]ActiveCredential, error) {
	if !provider.Known(providerName) {
		return nil, constant.NewErrorMsg(constant.CodeUnknownProvider, fmt.Sprintf("unknown provider: %s", providerName))
	}

	rows, err := r.MainDao.ListSubMerchants(merchantID, providerName)
	if err != nil {
		return nil, err
	}

	class := dayClass(at, overrides, forceSchedule)
	var out []ActiveCredential
	for _, row := range rows {
		if class == "weekend" && !row.Schedule.Weekend {
			continue
		}
		if class == "weekday" && !row.Schedule.Weekday {
			continue
		}
		client, err := provider.New(providerName, row.Credentials)
		if err != nil {
			return nil, fmt.Errorf("sub-merchant %d: %w", row.ID, err)
		}
		out = append(out, ActiveCredential{SubMerchant: row, Client: client})
	}
	if len(out) == 0 {
		return nil, constant.NewErrorMsg(constant.CodeNoActiveProvider,
			fmt.Sprintf("no active %s credentials for merchant %d (%s)", providerName, merchantID, class))
	}
	return out, nil
}
