// Package settlement reconciles PAID orders against provider settlement
// status and credits partner balances. Runs as an hourly sweep plus a full
// daily pass at the Jakarta settlement hour.
package settlement

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"launcx-order-api/internal/callback"
	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/logger"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/notify"
	"launcx-order-api/internal/provider"
	"launcx-order-api/internal/system"
	"launcx-order-api/internal/utils"
	"launcx-order-api/internal/utils/timeutil"
)

// Cursor marks progress through the PAID set, ordered by (created_at, id).
type Cursor struct {
	CreatedAt time.Time
	ID        uint64
}

// Stats accumulates one pass's outcome.
type Stats struct {
	Scanned  int
	Settled  int
	Skipped  int
	NetMoved decimal.Decimal
}

type Reconciler struct {
	OrderDao *dao.OrderDao
	MainDao  *dao.MainDao
	Ingestor *callback.Ingestor
	Events   event.Publisher
	Log      *logrus.Logger
}

func NewReconciler(pub event.Publisher) *Reconciler {
	if pub == nil {
		pub = event.Nop{}
	}
	return &Reconciler{
		OrderDao: dao.NewOrderDao(),
		MainDao:  dao.NewMainDao(),
		Ingestor: callback.NewIngestor(pub),
		Events:   pub,
		Log:      logger.NewLogger("settlement"),
	}
}

// clientForOrder rebuilds the provider adapter from the credential set the
// order was created with.
func (r *Reconciler) clientForOrder(o *ordermodel.Order) (provider.Client, error) {
	sub, err := r.MainDao.GetSubMerchant(o.SubMerchantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, constant.NewErrorMsg(constant.CodeSystemError, "order references missing sub-merchant")
	}
	return provider.New(o.Channel, sub.Credentials)
}

// settleOne checks one PAID order and settles it when the provider confirms.
// Returns the net credited, zero when the order stayed PAID.
func (r *Reconciler) settleOne(ctx context.Context, o *ordermodel.Order) (decimal.Decimal, error) {
	client, err := r.clientForOrder(o)
	if err != nil {
		return decimal.Zero, err
	}
	refID := strconv.FormatUint(o.ID, 10)
	st, err := client.CheckStatus(ctx, refID)
	if err != nil {
		return decimal.Zero, err
	}
	if !st.Settled {
		return decimal.Zero, nil
	}

	net := decimal.Zero
	if o.PendingAmount != nil {
		net = *o.PendingAmount
	}
	if !st.SettlementAmount.IsZero() {
		net = st.SettlementAmount
	}
	if !net.IsPositive() {
		r.Log.Warnf("order %d settled upstream but has no creditable amount", o.ID)
		return decimal.Zero, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            constant.OrderSettled,
		"settlement_status": st.SettlementStatus,
		"settlement_amount": net,
		"pending_amount":    nil,
		"settlement_time":   now,
	}
	if !st.Fee.IsZero() {
		updates["fee_3rd_party"] = st.Fee
	}
	if st.RRN != "" {
		updates["rrn"] = st.RRN
	}

	settled := false
	err = utils.DoWithBackoff(ctx, config.C.Settlement.RetryAttempts, 200*time.Millisecond, func() error {
		var serr error
		settled, serr = r.OrderDao.SettleOrderAndCredit(o.ID, o.PartnerClientID, updates, net)
		return serr
	})
	if err != nil {
		return decimal.Zero, err
	}
	if !settled {
		// Lost the race to a settlement-bearing webhook.
		return decimal.Zero, nil
	}

	_ = r.Events.Publish("order.settled", dto.OrderEvent{
		OrderID:         refID,
		PartnerClientID: o.PartnerClientID,
		Channel:         o.Channel,
		Status:          constant.OrderSettled,
		Amount:          o.Amount,
		NetAmount:       net,
		Ts:              time.Now().UnixMilli(),
	})
	if partner, perr := r.MainDao.GetPartnerByID(o.PartnerClientID); perr == nil && partner != nil {
		feeLauncx := decimal.Zero
		if o.FeeLauncx != nil {
			feeLauncx = *o.FeeLauncx
		}
		ss := st.SettlementStatus
		r.Ingestor.EnqueuePartnerCallback(partner, o.ID, constant.OrderSettled, &ss, o.Amount, feeLauncx, net, o.QRPayload)
	}
	return net, nil
}

// RunOnePass settles one batch after the cursor. Returns the advanced cursor
// and whether a full batch was read (meaning more rows may remain).
func (r *Reconciler) RunOnePass(ctx context.Context, cur Cursor, cutoff time.Time) (Cursor, Stats, bool, error) {
	stats := Stats{NetMoved: decimal.Zero}
	batch := config.C.Settlement.BatchSize
	rows, err := r.OrderDao.ListPaidOrders(cur.CreatedAt, cur.ID, cutoff, batch)
	if err != nil {
		return cur, stats, false, err
	}
	if len(rows) == 0 {
		return cur, stats, false, nil
	}

	sem := make(chan struct{}, config.C.Settlement.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range rows {
		o := rows[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			net, err := r.settleOne(ctx, &o)
			mu.Lock()
			defer mu.Unlock()
			stats.Scanned++
			switch {
			case err != nil:
				stats.Skipped++
				r.Log.Warnf("order %d settlement check failed: %v", o.ID, err)
			case net.IsPositive():
				stats.Settled++
				stats.NetMoved = stats.NetMoved.Add(net)
			default:
				stats.Skipped++
			}
		}()
	}
	wg.Wait()

	last := rows[len(rows)-1]
	next := Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	return next, stats, len(rows) == batch, nil
}

// RunFull walks the whole PAID set up to the cutoff, batch by batch.
func (r *Reconciler) RunFull(ctx context.Context, trigger string) {
	started := time.Now()
	cutoff := started
	var cur Cursor
	total := Stats{NetMoved: decimal.Zero}
	batches := 0

	for {
		next, stats, more, err := r.RunOnePass(ctx, cur, cutoff)
		if err != nil {
			r.Log.Errorf("settlement pass failed (%s): %v", trigger, err)
			break
		}
		batches++
		total.Scanned += stats.Scanned
		total.Settled += stats.Settled
		total.Skipped += stats.Skipped
		total.NetMoved = total.NetMoved.Add(stats.NetMoved)
		cur = next
		if !more || stats.Scanned == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}

	r.Log.Infof("settlement run done (%s): batches=%d scanned=%d settled=%d skipped=%d net=%s",
		trigger, batches, total.Scanned, total.Settled, total.Skipped, total.NetMoved)

	summary := dto.SettlementSummary{
		Batches:     batches,
		Scanned:     total.Scanned,
		Settled:     total.Settled,
		Skipped:     total.Skipped,
		NetMoved:    total.NetMoved,
		StartedAt:   started.UnixMilli(),
		FinishedAt:  time.Now().UnixMilli(),
		TriggeredBy: trigger,
	}
	_ = r.Events.Publish("settlement.completed", summary)
	if chat := system.BotChatID(); chat != "" && total.Settled > 0 {
		notify.Notify(chat, "INFO", "Settlement run",
			utils.MapToJSON(summary))
	}
}

// StartLoops runs the hourly sweep and the daily full pass at the configured
// Jakarta hour until ctx is cancelled.
func (r *Reconciler) StartLoops(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Duration(config.C.Settlement.SweepMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunFull(ctx, "hourly")
			}
		}
	}()

	go func() {
		for {
			wait := untilNextDailyRun(timeutil.NowJakarta(), config.C.Settlement.DailyHour)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				r.RunFull(ctx, "daily")
			}
		}
	}()
}

// untilNextDailyRun computes the delay to the next Jakarta wall-clock hour.
func untilNextDailyRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
