package dao

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dal"
	mainmodel "launcx-order-api/internal/model/main"
	ordermodel "launcx-order-api/internal/model/order"
)

// OrderDao owns the transactional side: orders, withdrawals, the callback
// audit log and the outbound callback queue. Status transitions are
// conditional updates (expected prior status in the WHERE clause) so
// concurrent writers behave like compare-and-swap.
type OrderDao struct {
	DB *gorm.DB
}

func NewOrderDao() *OrderDao {
	if dal.DB == nil {
		log.Panic("[FATAL] dal.DB is nil - database not initialized")
	}
	return &OrderDao{DB: dal.DB}
}

func NewOrderDaoWithDB(db *gorm.DB) *OrderDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &OrderDao{DB: db}
}

func (r *OrderDao) checkDB() error {
	if r == nil || r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

func (r *OrderDao) InsertOrder(o *ordermodel.Order) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	return r.DB.Create(o).Error
}

func (r *OrderDao) GetOrderByID(id uint64) (*ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	var m ordermodel.Order
	err := r.DB.Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// UpdateOrderWhereStatus applies updates only if the order still has the
// expected status. Returns the number of affected rows; 0 means another
// writer got there first.
func (r *OrderDao) UpdateOrderWhereStatus(id uint64, expected string, updates map[string]interface{}) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, fmt.Errorf("update order failed: %w", err)
	}
	res := r.DB.Model(&ordermodel.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpsertTransactionCallback writes the raw webhook audit row, one per
// reference id. Re-delivery updates the existing row.
func (r *OrderDao) UpsertTransactionCallback(refID, provider string, payload []byte) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("upsert callback audit failed: %w", err)
	}
	now := time.Now()
	var existing ordermodel.TransactionCallback
	err := r.DB.Where("reference_id = ?", refID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.DB.Create(&ordermodel.TransactionCallback{
			ReferenceID: refID,
			Provider:    provider,
			Payload:     ordermodel.RawJSON(payload),
			ReceivedAt:  now,
		}).Error
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return r.DB.Model(&ordermodel.TransactionCallback{}).
		Where("reference_id = ?", refID).
		Updates(map[string]interface{}{
			"payload":     ordermodel.RawJSON(payload),
			"received_at": now,
		}).Error
}

func (r *OrderDao) InsertTransactionRequest(a *ordermodel.TransactionRequest) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert transaction request failed: %w", err)
	}
	return r.DB.Create(a).Error
}

func (r *OrderDao) InsertCallbackJob(j *ordermodel.CallbackJob) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert callback job failed: %w", err)
	}
	return r.DB.Create(j).Error
}

// ListPendingCallbackJobs returns undelivered jobs below the attempt cap,
// oldest first.
func (r *OrderDao) ListPendingCallbackJobs(maxAttempts, limit int) ([]ordermodel.CallbackJob, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list callback jobs failed: %w", err)
	}
	var jobs []ordermodel.CallbackJob
	err := r.DB.Where("delivered = ? AND attempts < ?", false, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return jobs, nil
}

func (r *OrderDao) MarkJobDelivered(id uint64) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("mark job delivered failed: %w", err)
	}
	return r.DB.Model(&ordermodel.CallbackJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"delivered": true}).Error
}

func (r *OrderDao) BumpJobAttempt(id uint64, lastError string) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("bump job attempt failed: %w", err)
	}
	return r.DB.Model(&ordermodel.CallbackJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}

// MoveJobToDeadLetter copies the job into the dead-letter table with its
// final attempt count and deletes the live row, atomically. attempts includes
// the delivery that just failed; the live row only records completed bumps.
func (r *OrderDao) MoveJobToDeadLetter(job ordermodel.CallbackJob, attempts int, lastError string, statusCode *int) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("dead letter move failed: %w", err)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		dl := ordermodel.CallbackJobDeadLetter{
			JobID:      job.ID,
			URL:        job.URL,
			Payload:    job.Payload,
			Signature:  job.Signature,
			Attempts:   attempts,
			LastError:  &lastError,
			StatusCode: statusCode,
		}
		if err := tx.Create(&dl).Error; err != nil {
			return err
		}
		return tx.Delete(&ordermodel.CallbackJob{}, job.ID).Error
	})
}

// ListPaidOrders pages PAID orders after the (createdAt, id) cursor, bounded
// by cutoff when non-zero. Ordered ascending so the cursor can advance.
func (r *OrderDao) ListPaidOrders(afterCreatedAt time.Time, afterID uint64, cutoff time.Time, limit int) ([]ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list paid orders failed: %w", err)
	}
	q := r.DB.Where("status = ? AND partner_client_id > 0", constant.OrderPaid)
	if !afterCreatedAt.IsZero() {
		q = q.Where("(created_at > ?) OR (created_at = ? AND id > ?)", afterCreatedAt, afterCreatedAt, afterID)
	}
	if !cutoff.IsZero() {
		q = q.Where("created_at < ?", cutoff)
	}
	var rows []ordermodel.Order
	err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// SettleOrderAndCredit flips the order PAID -> SETTLED and credits the
// partner balance in one transaction. The conditional update is the guard:
// when another run settled the order first, RowsAffected is 0 and no credit
// happens.
func (r *OrderDao) SettleOrderAndCredit(orderID uint64, partnerClientID uint64, updates map[string]interface{}, net decimal.Decimal) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, fmt.Errorf("settle order failed: %w", err)
	}
	settled := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ordermodel.Order{}).
			Where("id = ? AND status = ?", orderID, constant.OrderPaid).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		settled = true
		return tx.Model(&mainmodel.PartnerClient{}).
			Where("id = ?", partnerClientID).
			Update("balance", gorm.Expr("balance + ?", net)).Error
	})
	return settled, err
}

func (r *OrderDao) InsertWithdrawal(w *ordermodel.WithdrawRequest) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert withdrawal failed: %w", err)
	}
	return r.DB.Create(w).Error
}

func (r *OrderDao) GetWithdrawalByRefID(refID string) (*ordermodel.WithdrawRequest, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get withdrawal failed: %w", err)
	}
	var m ordermodel.WithdrawRequest
	err := r.DB.Where("ref_id = ?", refID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// CreateWithdrawalAndDebit inserts the PENDING withdrawal and debits the
// partner balance in one transaction. The debit is conditional on the
// balance actually covering the amount, so the balance can never go
// negative from this path.
func (r *OrderDao) CreateWithdrawalAndDebit(w *ordermodel.WithdrawRequest, amount decimal.Decimal) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("create withdrawal failed: %w", err)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&mainmodel.PartnerClient{}).
			Where("id = ? AND balance >= ?", w.PartnerClientID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return constant.NewError(constant.CodeInsufficientFunds)
		}
		return tx.Create(w).Error
	})
}

// UpdateWithdrawalMeta updates non-status fields on a still-PENDING row.
func (r *OrderDao) UpdateWithdrawalMeta(refID string, updates map[string]interface{}) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("update withdrawal failed: %w", err)
	}
	return r.DB.Model(&ordermodel.WithdrawRequest{}).
		Where("ref_id = ? AND status = ?", refID, constant.WithdrawPending).
		Updates(updates).Error
}

// FinalizeWithdrawal moves a PENDING withdrawal to a terminal status; when
// refund is true the debited amount is returned to the partner balance in
// the same transaction. Safe to replay: once the row left PENDING the
// conditional update matches nothing and the refund is skipped.
func (r *OrderDao) FinalizeWithdrawal(refID string, status string, updates map[string]interface{}, refund decimal.Decimal) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, fmt.Errorf("finalize withdrawal failed: %w", err)
	}
	var w ordermodel.WithdrawRequest
	if err := r.DB.Where("ref_id = ?", refID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("query failed: %w", err)
	}

	applied := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if updates == nil {
			updates = map[string]interface{}{}
		}
		updates["status"] = status
		res := tx.Model(&ordermodel.WithdrawRequest{}).
			Where("ref_id = ? AND status = ?", refID, constant.WithdrawPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		if refund.IsPositive() {
			return tx.Model(&mainmodel.PartnerClient{}).
				Where("id = ?", w.PartnerClientID).
				Update("balance", gorm.Expr("balance + ?", refund)).Error
		}
		return nil
	})
	return applied, err
}
