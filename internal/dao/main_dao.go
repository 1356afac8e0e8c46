package dao

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"launcx-order-api/internal/dal"
	mainmodel "launcx-order-api/internal/model/main"
)

// MainDao reads the tenant/config side: partner clients, sub merchants,
// internal merchants, sys config.
type MainDao struct {
	DB *gorm.DB
}

func NewMainDao() *MainDao {
	if dal.DB == nil {
		log.Panic("[FATAL] dal.DB is nil - database not initialized")
	}
	return &MainDao{DB: dal.DB}
}

func NewMainDaoWithDB(db *gorm.DB) *MainDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &MainDao{DB: db}
}

func (r *MainDao) checkDB() error {
	if r == nil || r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

func (r *MainDao) GetPartnerByAPIKey(apiKey string) (*mainmodel.PartnerClient, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get partner by api key failed: %w", err)
	}
	var m mainmodel.PartnerClient
	err := r.DB.Where("api_key = ?", apiKey).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

func (r *MainDao) GetPartnerByID(id uint64) (*mainmodel.PartnerClient, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get partner by id failed: %w", err)
	}
	var m mainmodel.PartnerClient
	err := r.DB.Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// GetMerchantByName looks up the internal per-provider merchant row.
func (r *MainDao) GetMerchantByName(name string) (*mainmodel.Merchant, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get merchant failed: %w", err)
	}
	var m mainmodel.Merchant
	err := r.DB.Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// ListSubMerchants returns the active credential sets for (merchant, provider).
func (r *MainDao) ListSubMerchants(merchantID uint64, provider string) ([]mainmodel.SubMerchant, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list sub merchants failed: %w", err)
	}
	var rows []mainmodel.SubMerchant
	err := r.DB.Where("merchant_id = ? AND provider = ? AND status = 1", merchantID, provider).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (r *MainDao) GetSubMerchant(id uint64) (*mainmodel.SubMerchant, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get sub merchant failed: %w", err)
	}
	var m mainmodel.SubMerchant
	err := r.DB.Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

func (r *MainDao) GetSysConfig(key string) (*mainmodel.SysConfig, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get sys config failed: %w", err)
	}
	var m mainmodel.SysConfig
	err := r.DB.Where("config_key = ?", key).Last(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}
